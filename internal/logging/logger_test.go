package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSONAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Options{App: "ai-quiz", Env: "production", Level: "WARN"})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "ai-quiz", entry["app"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	for _, level := range []string{"", "loud"} {
		logger := newLogger(&bytes.Buffer{}, Options{Env: "production", Level: level})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel(), "level %q", level)
	}
}

func TestNewDevelopmentUsesConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, Options{App: "ai-quiz", Env: "development"}).Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestIntoContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), zerolog.New(&buf).With().Str("request_id", "r-1").Logger())

	FromContext(ctx).Info().Msg("scoped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "r-1", entry["request_id"])
}
