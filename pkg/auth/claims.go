// Package auth verifies bearer tokens issued by the accounts service.
// The token subject is the user's UUID.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// UserIDKey is the context key for the parsed subject.
	UserIDKey contextKey = "user_id"
)

// Claims is the token payload. Only the registered claims and email are used.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetUserID returns the authenticated user's id set by RequireAuth.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithUser returns a context carrying claims and the parsed user id.
func WithUser(ctx context.Context, claims *Claims, userID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return context.WithValue(ctx, UserIDKey, userID)
}
