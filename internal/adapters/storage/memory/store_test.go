package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/docstore"
	"pet-medical-log/internal/ports/docstore/docstoretest"
)

func TestStore_Conformance(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store { return NewStore() })
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Put(ctx, "current-data", "last", docstore.Document{
		"medicamentos": []any{map[string]any{"nombre": "omeprazol"}},
	}))

	got, err := s.Get(ctx, "current-data", "last")
	require.NoError(t, err)
	got["medicamentos"] = nil

	again, err := s.Get(ctx, "current-data", "last")
	require.NoError(t, err)
	assert.Len(t, again["medicamentos"], 1)
}
