// Package metrics mide las operaciones contra el docstore y las expone en formato Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pet-medical-log/internal/ports/docstore"
)

const namespace = "petlog"

// Metrics agrupa los collectors y el registry propio (no el global).
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Operaciones contra el docstore por tipo y resultado.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latencia de las operaciones contra el docstore.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.operations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry sirve para tests (testutil) y para registrar collectors extra.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, docstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, docstore.ErrUndefinedField),
		errors.Is(err, docstore.ErrUnsupported),
		errors.Is(err, docstore.ErrInvalidQuery):
		return "invalid"
	default:
		return "error"
	}
}

// InstrumentStore envuelve un Store registrando cada llamada.
func (m *Metrics) InstrumentStore(next docstore.Store) docstore.Store {
	return &instrumentedStore{next: next, m: m}
}

type instrumentedStore struct {
	next docstore.Store
	m    *Metrics
}

func (s *instrumentedStore) Create(ctx context.Context, collection string, doc docstore.Document) (id string, err error) {
	defer func(start time.Time) { s.m.observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, collection, doc)
}

func (s *instrumentedStore) CreateBatch(ctx context.Context, collection string, docs []docstore.Document) (ids []string, err error) {
	defer func(start time.Time) { s.m.observe("create_batch", start, err) }(time.Now())
	return s.next.CreateBatch(ctx, collection, docs)
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (doc docstore.Document, err error) {
	defer func(start time.Time) { s.m.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, collection, id)
}

func (s *instrumentedStore) Update(ctx context.Context, collection, id string, patch docstore.Document) (err error) {
	defer func(start time.Time) { s.m.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, patch)
}

func (s *instrumentedStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { s.m.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

func (s *instrumentedStore) Query(ctx context.Context, collection string, q docstore.Query) (res []docstore.Snapshot, err error) {
	defer func(start time.Time) { s.m.observe("query", start, err) }(time.Now())
	return s.next.Query(ctx, collection, q)
}
