// Package auth define lo que el API necesita de la identidad del que llama.
package auth

import "context"

// Claims identifica al autor de un request; UserID termina como createdBy del evento.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}

// AuthVerifier valida un bearer token. Un error deja el request sin claims (createdBy "system").
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
