package trial

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	// CookieName is the signed cookie that carries the anonymous client key.
	CookieName = "quiz-client"

	clientKeyValue = "client_key"

	// cookieMaxAge approximates the unscoped expiry of browser local storage.
	cookieMaxAge = 10 * 365 * 24 * 60 * 60
)

type contextKey struct{}

// ClientKeys issues and reads the per-browser key anonymous trials are tracked by.
type ClientKeys struct {
	store  *sessions.CookieStore
	logger zerolog.Logger
}

// NewClientKeys builds a cookie store signed with secret.
func NewClientKeys(secret []byte, secure bool, logger zerolog.Logger) *ClientKeys {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &ClientKeys{
		store:  store,
		logger: logger.With().Str("component", "trial_client_keys").Logger(),
	}
}

// Resolve returns the caller's client key, issuing a new cookie when absent or tampered with.
func (c *ClientKeys) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	// Get returns a fresh session alongside a decode error.
	session, err := c.store.Get(r, CookieName)
	if err != nil {
		c.logger.Debug().Err(err).Msg("discarding unreadable client cookie")
	}
	if key, ok := session.Values[clientKeyValue].(string); ok && key != "" {
		return key, nil
	}

	key := uuid.NewString()
	session.Values[clientKeyValue] = key
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return key, nil
}

// Middleware resolves the client key for every request and stores it in the context.
func (c *ClientKeys) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := c.Resolve(w, r)
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to issue client key")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClientKey(r.Context(), key)))
	})
}

// WithClientKey stores key in ctx.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, contextKey{}, key)
}

// ClientKeyFromContext returns the key stored by Middleware.
func ClientKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(contextKey{}).(string)
	return key, ok && key != ""
}
