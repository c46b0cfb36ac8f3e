package metrics

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/adapters/storage/memory"
	"pet-medical-log/internal/ports/docstore"
)

func TestInstrumentStore_CountsByResult(t *testing.T) {
	ctx := context.Background()
	m := New()
	store := m.InstrumentStore(memory.NewStore())

	id, err := store.Create(ctx, "pets/melba/events", docstore.Document{"type": "NOTE"})
	require.NoError(t, err)
	_, err = store.Get(ctx, "pets/melba/events", id)
	require.NoError(t, err)
	_, err = store.Get(ctx, "pets/melba/events", "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = store.Create(ctx, "pets/melba/events", docstore.Document{"weightKg": math.NaN()})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("get", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestHandler_ExposesStoreMetrics(t *testing.T) {
	m := New()
	store := m.InstrumentStore(memory.NewStore())
	_, err := store.Query(context.Background(), "pets/melba/events", docstore.Query{})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `petlog_store_operations_total{op="query",result="ok"} 1`)
	assert.Contains(t, string(body), "petlog_store_operation_duration_seconds_bucket")
}
