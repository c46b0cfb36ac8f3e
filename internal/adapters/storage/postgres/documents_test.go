package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/docstore"
)

func TestBuildQuery_FiltersOrderAndLimit(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildQuery("pets/melba/events", docstore.Query{
		Where: []docstore.Filter{
			{Field: "type", Op: docstore.OpIn, Value: []any{"WEIGHT", "NOTE"}},
			{Field: "occurredAt", Op: docstore.OpGreaterEq, Value: from},
		},
		OrderBy: []docstore.Order{{Field: "occurredAt", Direction: docstore.Desc}},
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE collection = $1")
	assert.Contains(t, query, "data #> '{type}' IN ($2::jsonb,$3::jsonb)")
	assert.Contains(t, query, "data #> '{occurredAt}' >= $4::jsonb")
	assert.Contains(t, query, "ORDER BY data #> '{occurredAt}' DESC, id ASC")
	assert.Contains(t, query, "LIMIT $5")

	require.Len(t, args, 5)
	assert.Equal(t, "pets/melba/events", args[0])
	assert.Equal(t, `"WEIGHT"`, args[1])
	assert.Equal(t, `{"_ts":"2024-03-01T00:00:00.000000000Z"}`, args[3])
	assert.Equal(t, 10, args[4])
}

func TestBuildQuery_NestedFieldAndEmptyIn(t *testing.T) {
	query, args, err := buildQuery("c", docstore.Query{
		Where: []docstore.Filter{
			{Field: "data.name", Op: docstore.OpEqual, Value: "Omeprazol"},
			{Field: "type", Op: docstore.OpIn, Value: []any{}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "data #> '{data,name}' = $2::jsonb")
	assert.Contains(t, query, "AND FALSE")
	assert.NotContains(t, query, "LIMIT")
	assert.Len(t, args, 2)
}

func TestBuildQuery_RejectsBadField(t *testing.T) {
	_, _, err := buildQuery("c", docstore.Query{
		Where: []docstore.Filter{{Field: "x'; DROP TABLE documents; --", Op: docstore.OpEqual, Value: 1}},
	})
	require.ErrorIs(t, err, docstore.ErrInvalidQuery)
}
