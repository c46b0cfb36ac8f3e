package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/docstore"
	"pet-medical-log/internal/ports/docstore/docstoretest"
)

func newTestStore(t *testing.T) docstore.Store {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "petlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDocumentStore(db)
}

func TestDocumentStore_Conformance(t *testing.T) {
	docstoretest.Run(t, newTestStore)
}

func TestBuildQuery_NullEquality(t *testing.T) {
	query, args, err := buildQuery("c", docstore.Query{
		Where: []docstore.Filter{{Field: "data.endAt", Op: docstore.OpEqual, Value: nil}},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "json_type(data, '$.data.endAt') = 'null'")
	assert.Len(t, args, 1)
}
