package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

func completionServer(t *testing.T, content string, captured *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIGeneratorReturnsQuestionArray(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := completionServer(t, `{"questions":`+sampleBatch+`}`, &captured)
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, zerolog.New(io.Discard))
	raw, err := gen.Generate(context.Background(), quiz.Request{Topic: "Geography", Level: 5, ExpectedCount: 20})
	require.NoError(t, err)
	assert.JSONEq(t, sampleBatch, string(raw))

	assert.Equal(t, defaultOpenAIModel, captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "20 questions of level 5 on the topic of Geography")
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, captured.ResponseFormat.Type)
}

func TestOpenAIGeneratorPassesProseThroughForValidation(t *testing.T) {
	srv := completionServer(t, "Here is a quiz about geography!", nil)
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"}, zerolog.New(io.Discard))
	req := quiz.Request{Topic: "Geography", Level: 1, ExpectedCount: 10}
	raw, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	_, err = quiz.Validate(req, raw)
	assert.ErrorIs(t, err, quiz.ErrContractViolation)
}

func TestOpenAIGeneratorAPIErrorIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"requests"}}`)
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, zerolog.New(io.Discard))
	_, err := gen.Generate(context.Background(), quiz.Request{Topic: "Geography", Level: 1, ExpectedCount: 10})
	assert.ErrorIs(t, err, quiz.ErrNetworkFailure)
}
