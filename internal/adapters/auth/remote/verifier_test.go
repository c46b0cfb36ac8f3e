package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/ports/auth"
)

func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != verifyPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var body struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch body.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(map[string]string{"user_id": " vet-1 ", "email": "vet@clinica.test"})
		case "anon":
			_ = json.NewEncoder(w).Encode(map[string]string{"email": "x"})
		case "down":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
}

func TestVerifier(t *testing.T) {
	srv := newIdentityServer(t)
	defer srv.Close()

	v, err := NewVerifier(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	ctx := context.Background()

	claims, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "vet-1", Email: "vet@clinica.test"}, claims)

	_, err = v.Verify(ctx, "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(ctx, "down")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(ctx, "anon")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(ctx, "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerifier_WrongAPIKey(t *testing.T) {
	srv := newIdentityServer(t)
	defer srv.Close()

	v, err := NewVerifier(Config{BaseURL: srv.URL, APIKey: "other"})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewVerifier_NotConfigured(t *testing.T) {
	_, err := NewVerifier(Config{BaseURL: "http://id.local"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	var v *Verifier
	_, err = v.Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
