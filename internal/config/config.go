package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"ai-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	OAuth    OAuth
	AI       AI
	Quiz     Quiz
	CORS     CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders the libpq keyword/value connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds cache and trial ledger configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret     string        `env:"JWT_SECRET,notEmpty"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`
	SessionSecret string        `env:"SESSION_COOKIE_SECRET,notEmpty"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`
}

// OAuth holds OAuth provider configuration.
type OAuth struct {
	GoogleClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET" envDefault:""`
	GoogleRedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
}

// AI configures the quiz generation provider.
type AI struct {
	Provider      string        `env:"AI_PROVIDER" envDefault:"http"`
	GeneratorURL  string        `env:"AI_GENERATOR_URL" envDefault:""`
	GeneratorKey  string        `env:"AI_GENERATOR_API_KEY" envDefault:""`
	OpenAIKey     string        `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:""`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:""`
	HTTPTimeout   time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"30s"`
}

// Quiz governs session behavior, caching and the anonymous trial.
type Quiz struct {
	RevealDelay    time.Duration `env:"QUIZ_REVEAL_DELAY" envDefault:"1s"`
	CacheTTL       time.Duration `env:"QUIZ_CACHE_TTL" envDefault:"0s"`
	TrialSource    string        `env:"QUIZ_TRIAL_SOURCE" envDefault:"header"`
	SessionIdleTTL time.Duration `env:"QUIZ_SESSION_IDLE_TTL" envDefault:"30m"`
	SweepInterval  time.Duration `env:"QUIZ_SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization,x-free-used"`
	ExposedHeaders   []string `env:"CORS_EXPOSED_HEADERS" envSeparator:"," envDefault:"x-free-used"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
