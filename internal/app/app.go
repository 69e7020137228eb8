package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	"github.com/gokatarajesh/ai-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/ai-quiz/internal/config"
	"github.com/gokatarajesh/ai-quiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
	"github.com/gokatarajesh/ai-quiz/internal/logging"
	"github.com/gokatarajesh/ai-quiz/internal/metrics"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/quiz/ai"
	"github.com/gokatarajesh/ai-quiz/internal/server"
	"github.com/gokatarajesh/ai-quiz/internal/session"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
	ws "github.com/gokatarajesh/ai-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	sessions  *session.Registry
	sweeper   *session.Sweeper
	bgCancels []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(logging.Options{App: cfg.Name, Env: cfg.Env, Level: cfg.LogLevel})
	logger.Info().Msg("starting application bootstrap")

	trialSource, err := trial.ParseSource(cfg.Quiz.TrialSource)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := sqlcgen.New(pool)
	userRepo := repository.NewUserRepository(queries)
	resultRepo := repository.NewResultRepository(queries)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Identity provider
	tokenMgr := jwt.NewManager(jwt.TokenConfig{
		AccessSecret: []byte(cfg.Security.JWTSecret),
		AccessTTL:    cfg.Security.AccessTTL,
		Issuer:       cfg.Name,
	})
	authSvc := auth.NewService(userRepo, tokenMgr, logger)

	redirectURL := cfg.OAuth.GoogleRedirectURL
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://%s/v1/oauth/google/callback", cfg.HTTPAddr)
	}
	oauthSvc := auth.NewOAuthService(auth.OAuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  redirectURL,
	}, logger)
	if oauthSvc.Configured() {
		logger.Info().Msg("OAuth service initialized")
	} else {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET); every caller is anonymous")
	}
	authHandlers := auth.NewHTTPHandlers(authSvc, oauthSvc, cfg.Security.SecureCookies, logger)

	// Generation
	generator, err := newGenerator(cfg.AI, logger)
	if err != nil {
		return nil, err
	}
	var cache quiz.Cache
	if cfg.Quiz.CacheTTL > 0 {
		cache = quiz.NewRedisCache(redisClient, cfg.Quiz.CacheTTL)
	}
	quizSvc := quiz.NewService(generator, quiz.ServiceOptions{Cache: cache, Metrics: m}, logger)

	// Anonymous trial
	clientKeys := trial.NewClientKeys([]byte(cfg.Security.SessionSecret), cfg.Security.SecureCookies, logger)
	trials := trial.NewResolver(trialSource, trial.NewRedisLedger(redisClient), logger)

	// Sessions
	wsHub := ws.NewHub(logger)
	registry := session.NewRegistry(session.RegistryOptions{
		Machine: quiz.MachineOptions{
			Source:      quizSvc,
			RevealDelay: cfg.Quiz.RevealDelay,
		},
		IdleTTL:     cfg.Quiz.SessionIdleTTL,
		Hub:         wsHub,
		Completions: session.NewResultRecorder(resultRepo, m, logger),
		Metrics:     m,
	}, logger)
	sweeper := session.NewSweeper(registry, cfg.Quiz.SweepInterval, logger)

	upgrader := server.NewWSUpgrader(cfg.CORS.AllowedOrigins)
	routes := server.Routes{
		Auth:     authHandlers,
		Sessions: session.NewHTTPHandlers(registry, trials, resultRepo, m, logger),
		Stream:   session.NewStreamHandler(registry, wsHub, tokenMgr, upgrader, logger),
		Quiz:     session.NewQuizHandler(quizSvc, trials, m, logger),
	}
	deps := []server.Pinger{
		server.PingFunc(pool.Ping),
		server.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}
	apiServer := server.NewHTTPServer(cfg, logger, deps, server.Middleware{
		Tokens:     tokenMgr,
		ClientKeys: clientKeys,
	}, routes)

	logger.Info().
		Str("ai_provider", cfg.AI.Provider).
		Str("trial_source", string(trialSource)).
		Dur("reveal_delay", cfg.Quiz.RevealDelay).
		Msg("quiz services initialized")

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		http:      apiServer,
		sessions:  registry,
		sweeper:   sweeper,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

func newGenerator(cfg config.AI, logger zerolog.Logger) (quiz.Generator, error) {
	switch cfg.Provider {
	case "", "http":
		if cfg.GeneratorURL == "" {
			logger.Warn().Msg("AI_GENERATOR_URL not set; quiz generation will fail until configured")
		}
		return ai.NewGenerator(ai.Config{
			GeneratorURL: cfg.GeneratorURL,
			GeneratorKey: cfg.GeneratorKey,
			Timeout:      cfg.HTTPTimeout,
		}, logger), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY must be configured for AI_PROVIDER=openai")
		}
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.HTTPTimeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q (want http or openai)", cfg.Provider)
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.sessions.Close()

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sweeper != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.sweeper.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("session sweeper stopped")
			}
		}()
	}
}
