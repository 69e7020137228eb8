package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var sawLogger bool
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Debug().Msg("inside handler")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/quiz", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, sawLogger)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/quiz", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	handler := Middleware(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()).Info().Msg("dropped")
	})
}
