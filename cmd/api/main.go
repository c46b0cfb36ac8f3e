// @title Pet Medical Log API
// @version 1.0
// @description Historial médico tipado de la mascota: eventos de peso, medicación, visitas y notas.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-medical-log/internal/adapters/auth/remote"
	"pet-medical-log/internal/adapters/storage"
	"pet-medical-log/internal/config"
	"pet-medical-log/internal/platform/logger"
	"pet-medical-log/internal/platform/metrics"
	"pet-medical-log/internal/ports/auth"
	"pet-medical-log/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{Format: logger.FormatJSON}).Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(cfg.LoggerOptions())
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Error("store error", map[string]any{"driver": cfg.Store.Driver, "err": err})
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	var verifier auth.AuthVerifier // nil => modo dev
	authCfg := remote.Config{BaseURL: cfg.Auth.URL, APIKey: cfg.Auth.APIKey, APIKeyHeader: cfg.Auth.APIKeyHeader}
	if authCfg.Configured() {
		v, err := remote.NewVerifier(authCfg)
		if err != nil {
			log.Error("auth verifier error", map[string]any{"err": err})
			os.Exit(1)
		}
		verifier = v
	} else {
		log.Warn("sin AUTH_URL: modo dev, se acepta X-Debug-User-ID", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Store:        store,
		Logger:       log,
		Metrics:      metrics.New(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": cfg.Addr(), "driver": cfg.Store.Driver})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}
