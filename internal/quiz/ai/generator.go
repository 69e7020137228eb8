package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

// maxResponseBytes bounds a generator response; a level 5 quiz is well under this.
const maxResponseBytes = 1 << 20

// Config holds connection details for the external generator service.
type Config struct {
	GeneratorURL string
	GeneratorKey string
	Timeout      time.Duration
}

// Generator implements quiz.Generator against an HTTP generator service.
type Generator struct {
	httpClient  *http.Client
	config      Config
	logger      zerolog.Logger
	generateURL string
}

var _ quiz.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.GeneratorURL, "/")

	return &Generator{
		httpClient:  newHTTPClient(timeout),
		config:      cfg,
		logger:      logger.With().Str("component", "ai_generator").Logger(),
		generateURL: base + "/generate",
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}
}

// Generate posts the request and returns the raw question array.
func (g *Generator) Generate(ctx context.Context, req quiz.Request) ([]byte, error) {
	if g.config.GeneratorURL == "" {
		return nil, fmt.Errorf("%w: generator endpoint not configured", quiz.ErrNetworkFailure)
	}

	body, err := json.Marshal(generatorRequest{
		Topic: req.Topic,
		Level: int(req.Level),
		Count: req.ExpectedCount,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.generateURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.GeneratorKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.GeneratorKey)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: generator returned status %d", quiz.ErrNetworkFailure, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read generator payload: %v", quiz.ErrNetworkFailure, err)
	}

	g.logger.Debug().
		Str("topic", req.Topic).
		Int("level", int(req.Level)).
		Dur("took", time.Since(start)).
		Int("bytes", len(data)).
		Msg("generator responded")

	return unwrapQuestions(data), nil
}

// unwrapQuestions accepts either a bare array or a {"questions": [...]} envelope
// holding at least one entry. Anything else is passed through for the validator to reject.
func unwrapQuestions(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}
	var envelope generatorResponse
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return data
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(envelope.Questions, &entries); err != nil || len(entries) == 0 {
		return data
	}
	return envelope.Questions
}

type generatorRequest struct {
	Topic string `json:"topic"`
	Level int    `json:"level"`
	Count int    `json:"count"`
}

type generatorResponse struct {
	Questions json.RawMessage `json:"questions"`
}
