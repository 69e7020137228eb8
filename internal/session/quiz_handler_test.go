package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
)

func serveQuiz(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuizHandlerAnonymousFirstQuiz(t *testing.T) {
	f := newFixture(trial.SourceHeader)
	h := NewQuizHandler(f.source, f.trials, nil, testLogger)

	req := asClient(newRequest(http.MethodPost, "/quiz", StartRequest{Topic: "Volcanoes", Level: 5}), "client-a")
	req.Header.Set(trial.HeaderFreeUsed, "false")
	rec := serveQuiz(h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get(trial.HeaderFreeUsed))

	var questions []quiz.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &questions))
	assert.Len(t, questions, 20)
	assert.Equal(t, "A", questions[0].Answer, "the one-shot endpoint returns answers for client-side play")

	used, err := f.ledger.Used(context.Background(), "client-a")
	require.NoError(t, err)
	assert.True(t, used)
}

func TestQuizHandlerDeniesSecondAnonymousQuiz(t *testing.T) {
	f := newFixture(trial.SourceHeader)
	h := NewQuizHandler(f.source, f.trials, nil, testLogger)

	req := newRequest(http.MethodPost, "/quiz", StartRequest{Topic: "Volcanoes", Level: 1})
	req.Header.Set(trial.HeaderFreeUsed, "true")
	rec := serveQuiz(h, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, TrialExhaustedMessage, rec.Body.String())
	assert.Equal(t, 0, f.source.callCount())
}

func TestQuizHandlerSignedInIgnoresTrial(t *testing.T) {
	f := newFixture(trial.SourceHeader)
	h := NewQuizHandler(f.source, f.trials, nil, testLogger)

	req := asUser(newRequest(http.MethodPost, "/quiz", StartRequest{Topic: "Volcanoes", Level: 1}), uuid.New())
	req.Header.Set(trial.HeaderFreeUsed, "true")
	rec := serveQuiz(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(trial.HeaderFreeUsed))
}

func TestQuizHandlerFailuresAreInternalErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      interface{}
		sourceErr error
		contains  string
	}{
		{"empty topic", StartRequest{Topic: "", Level: 1}, nil, "topic is required"},
		{"level zero", StartRequest{Topic: "Volcanoes", Level: 0}, nil, "level must be between 1 and 5"},
		{"malformed body", []int{1, 2}, nil, "Invalid request body"},
		{"provider down", StartRequest{Topic: "Volcanoes", Level: 1}, quiz.ErrNetworkFailure, "unreachable"},
		{"provider contract", StartRequest{Topic: "Volcanoes", Level: 1}, &quiz.ContractViolationError{Problems: []string{"x"}}, "unusable quiz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(trial.SourceHeader)
			f.source.err = tt.sourceErr
			h := NewQuizHandler(f.source, f.trials, nil, testLogger)

			rec := serveQuiz(h, asClient(newRequest(http.MethodPost, "/quiz", tt.body), "client-a"))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.contains)
			assert.Empty(t, rec.Header().Get(trial.HeaderFreeUsed))

			used, _ := f.ledger.Used(context.Background(), "client-a")
			assert.False(t, used, "failed generations never consume the trial")
		})
	}
}
