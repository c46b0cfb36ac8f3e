package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"melba"}`))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "nope", http.StatusTeapot)
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/", Headers: map[string]string{"X-Api-Key": "k"}})
	require.NoError(t, err)
	ctx := context.Background()

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.DoJSON(ctx, http.MethodGet, "ok", nil, nil, &out))
	assert.Equal(t, "melba", out.Name)

	require.NoError(t, c.DoJSON(ctx, http.MethodPost, "/empty", nil, map[string]int{"a": 1}, &out))

	err = c.DoJSON(ctx, http.MethodGet, "/other", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusTeapot, StatusCode(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestResolve(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	_, err = c.resolve("/relative")
	assert.Error(t, err)

	got, err := c.resolve("https://example.test/x")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/x", got)

	_, err = New(Options{BaseURL: "::bad"})
	assert.Error(t, err)
}
