package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	"github.com/gokatarajesh/ai-quiz/internal/config"
	"github.com/gokatarajesh/ai-quiz/internal/logging"
	"github.com/gokatarajesh/ai-quiz/internal/session"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
	httperrors "github.com/gokatarajesh/ai-quiz/pkg/http/errors"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Routes groups the handlers mounted by NewHTTPServer. Nil handlers are skipped.
type Routes struct {
	Auth     *auth.HTTPHandlers
	Sessions *session.HTTPHandlers
	Stream   http.Handler
	Quiz     http.Handler
}

// Middleware groups the request-scoped dependencies applied to every route.
type Middleware struct {
	Tokens     auth.TokenValidator
	ClientKeys *trial.ClientKeys
}

// NewWSUpgrader accepts upgrades from the configured CORS origins only.
func NewWSUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHTTPServer wires every route of the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps []Pinger, mw Middleware, routes Routes) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), deps); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeDependencyUnavailable, "A backing service is unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if routes.Auth != nil {
		mux.HandleFunc("GET /v1/oauth/{provider}/start", routes.Auth.OAuthStart)
		mux.HandleFunc("GET /v1/oauth/{provider}/callback", routes.Auth.OAuthCallback)
		mux.Handle("GET /v1/users/me", auth.RequireAuth(http.HandlerFunc(routes.Auth.GetMe)))
	}

	if routes.Quiz != nil {
		mux.Handle("POST /quiz", routes.Quiz)
	}

	if s := routes.Sessions; s != nil {
		mux.HandleFunc("POST /v1/sessions", s.Create)
		mux.HandleFunc("GET /v1/sessions/{id}", s.Get)
		mux.HandleFunc("DELETE /v1/sessions/{id}", s.Delete)
		mux.HandleFunc("POST /v1/sessions/{id}/start", s.Start)
		mux.HandleFunc("POST /v1/sessions/{id}/answer", s.Answer)
		mux.HandleFunc("POST /v1/sessions/{id}/restart", s.Restart)
		mux.Handle("GET /v1/users/me/results", auth.RequireAuth(http.HandlerFunc(s.Results)))
	}

	if routes.Stream != nil {
		mux.Handle("GET /ws/sessions/{id}", routes.Stream)
	}

	var handler http.Handler = mux
	if mw.Tokens != nil {
		handler = auth.AuthMiddleware(mw.Tokens, logger)(handler)
	}
	if mw.ClientKeys != nil {
		handler = mw.ClientKeys.Middleware(handler)
	}
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})(handler)
	handler = logging.Middleware(logger)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func pingDependencies(ctx context.Context, deps []Pinger) error {
	for _, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
