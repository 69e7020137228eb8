package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PG_HOST", "localhost")
	t.Setenv("PG_USER", "quiz")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "quiz")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("SESSION_COOKIE_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ai-quiz", cfg.Name)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Quiz.RevealDelay)
	assert.Zero(t, cfg.Quiz.CacheTTL, "every request regenerates unless caching is enabled")
	assert.Equal(t, "header", cfg.Quiz.TrialSource)
	assert.Equal(t, "http", cfg.AI.Provider)
	assert.Empty(t, cfg.OAuth.GoogleClientID)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "x-free-used")
	assert.Equal(t, "host=localhost port=5432 user=quiz password=secret dbname=quiz sslmode=disable pool_max_conns=10", cfg.Postgres.ConnString())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QUIZ_TRIAL_SOURCE", "ledger")
	t.Setenv("QUIZ_CACHE_TTL", "5m")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://quiz.example.com")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ledger", cfg.Quiz.TrialSource)
	assert.Equal(t, 5*time.Minute, cfg.Quiz.CacheTTL)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, []string{"https://quiz.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadMissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}
