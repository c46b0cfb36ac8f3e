package router

import (
	"net/http"

	mem "pet-medical-log/internal/adapters/storage/memory"
	_ "pet-medical-log/internal/docs"
	"pet-medical-log/internal/domain/events"
	"pet-medical-log/internal/middleware"
	"pet-medical-log/internal/platform/logger"
	"pet-medical-log/internal/platform/metrics"
	"pet-medical-log/internal/ports/auth"
	"pet-medical-log/internal/ports/docstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si no viene, in-memory.
	Store docstore.Store

	Logger logger.Logger

	// Opcional: si viene, el store se instrumenta y se expone /metrics.
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	if opts.Metrics != nil {
		store = opts.Metrics.InstrumentStore(store)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	eventsSvc := events.NewService(store, log.With(map[string]any{"component": "events"}))
	events.RegisterRoutes(r, eventsSvc)

	return r
}
