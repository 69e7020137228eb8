package auth

import (
	"context"

	"github.com/gokatarajesh/ai-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

type contextKey int

const (
	claimsKey contextKey = iota
)

// Identity adapts token claims to the quiz gate's identity capability.
// The zero value is anonymous.
type Identity struct {
	claims *jwt.Claims
}

var _ quiz.Identity = Identity{}

func (i Identity) Authenticated() bool { return i.claims != nil }

func (i Identity) ID() (string, bool) {
	if i.claims == nil {
		return "", false
	}
	return i.claims.UserID.String(), true
}

// Claims returns the verified token claims, or nil when anonymous.
func (i Identity) Claims() *jwt.Claims { return i.claims }

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// IdentityFromContext returns the caller identity resolved by AuthMiddleware.
func IdentityFromContext(ctx context.Context) Identity {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return Identity{claims: claims}
}
