// Package docstoretest tiene la batería común que corre contra cada backend de docstore.Store.
package docstoretest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/docstore"
)

func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	t.Run("create and get roundtrip", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, "pets/melba/events", docstore.Document{
			"type":       "WEIGHT",
			"occurredAt": base,
			"tags":       []any{"a", "b"},
			"data":       map[string]any{"weightKg": 18.5, "endAt": nil},
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := s.Get(ctx, "pets/melba/events", id)
		require.NoError(t, err)
		assert.Equal(t, "WEIGHT", got["type"])
		ts, ok := got["occurredAt"].(time.Time)
		require.True(t, ok, "occurredAt should come back as time.Time, got %T", got["occurredAt"])
		assert.True(t, ts.Equal(base))
		assert.Equal(t, []any{"a", "b"}, got["tags"])

		data, ok := got["data"].(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 18.5, data["weightKg"])
		v, present := data["endAt"]
		assert.True(t, present)
		assert.Nil(t, v)
	})

	t.Run("get missing is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "c", "nope")
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("undefined and non finite values are rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, "c", docstore.Document{"x": docstore.Undefined})
		require.ErrorIs(t, err, docstore.ErrUndefinedField)

		_, err = s.Create(ctx, "c", docstore.Document{"data": map[string]any{"weightKg": math.NaN()}})
		require.ErrorIs(t, err, docstore.ErrUnsupported)

		_, err = s.CreateBatch(ctx, "c", []docstore.Document{{"ok": true}, {"x": docstore.Undefined}})
		require.ErrorIs(t, err, docstore.ErrUndefinedField)

		res, err := s.Query(ctx, "c", docstore.Query{})
		require.NoError(t, err)
		assert.Empty(t, res, "a failed batch must not write anything")
	})

	t.Run("update merges top level", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, "c", docstore.Document{"notes": "a", "tags": []any{"x"}})
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, "c", id, docstore.Document{"notes": "b", "extra": nil}))
		got, err := s.Get(ctx, "c", id)
		require.NoError(t, err)
		assert.Equal(t, "b", got["notes"])
		assert.Equal(t, []any{"x"}, got["tags"])
		_, present := got["extra"]
		assert.True(t, present)

		err = s.Update(ctx, "c", "missing", docstore.Document{"notes": "c"})
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, "c", docstore.Document{"a": 1})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "c", id))
		require.NoError(t, s.Delete(ctx, "c", id))
		_, err = s.Get(ctx, "c", id)
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("query filters order and limit", func(t *testing.T) {
		s := newStore(t)
		docs := []docstore.Document{
			{"type": "WEIGHT", "occurredAt": base.Add(-48 * time.Hour), "legacyId": "r1"},
			{"type": "NOTE", "occurredAt": base.Add(-24 * time.Hour)},
			{"type": "WEIGHT", "occurredAt": base},
			{"type": "VISIT", "occurredAt": base.Add(24 * time.Hour), "legacyId": "r2"},
			{"type": "WEIGHT"},
		}
		ids, err := s.CreateBatch(ctx, "pets/melba/events", docs)
		require.NoError(t, err)
		require.Len(t, ids, len(docs))

		// otra colección no se mezcla
		_, err = s.Create(ctx, "pets/otro/events", docstore.Document{"type": "WEIGHT", "occurredAt": base})
		require.NoError(t, err)

		byOcc := []docstore.Order{{Field: "occurredAt", Direction: docstore.Desc}}

		res, err := s.Query(ctx, "pets/melba/events", docstore.Query{OrderBy: byOcc})
		require.NoError(t, err)
		require.Len(t, res, 4, "documents without the order field are excluded")
		assert.Equal(t, ids[3], res[0].ID)
		assert.Equal(t, ids[0], res[3].ID)

		res, err = s.Query(ctx, "pets/melba/events", docstore.Query{
			Where: []docstore.Filter{
				{Field: "type", Op: docstore.OpIn, Value: []any{"WEIGHT", "VISIT"}},
				{Field: "occurredAt", Op: docstore.OpGreaterEq, Value: base.Add(-48 * time.Hour)},
				{Field: "occurredAt", Op: docstore.OpLessEq, Value: base},
			},
			OrderBy: byOcc,
		})
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, ids[2], res[0].ID)
		assert.Equal(t, ids[0], res[1].ID)

		res, err = s.Query(ctx, "pets/melba/events", docstore.Query{
			Where:   []docstore.Filter{{Field: "type", Op: docstore.OpEqual, Value: "WEIGHT"}},
			OrderBy: []docstore.Order{{Field: "occurredAt", Direction: docstore.Asc}},
			Limit:   1,
		})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, ids[0], res[0].ID)

		res, err = s.Query(ctx, "pets/melba/events", docstore.Query{
			Where: []docstore.Filter{{Field: "legacyId", Op: docstore.OpEqual, Value: "r2"}},
			Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, ids[3], res[0].ID)
		assert.Equal(t, "VISIT", res[0].Data["type"])
	})

	t.Run("query rejects bad fields", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Query(ctx, "c", docstore.Query{OrderBy: []docstore.Order{{Field: "a b", Direction: docstore.Asc}}})
		require.ErrorIs(t, err, docstore.ErrInvalidQuery)
	})
}
