package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	"github.com/gokatarajesh/ai-quiz/internal/metrics"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
)

// TrialExhaustedMessage is the plain-text body of a gate refusal on POST /quiz.
const TrialExhaustedMessage = "You've used your free quiz. Sign in to generate more."

// QuizHandler serves POST /quiz: one gated generation returning the question array.
type QuizHandler struct {
	source  quiz.QuestionSource
	trials  *trial.Resolver
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewQuizHandler(source quiz.QuestionSource, trials *trial.Resolver, m *metrics.Metrics, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		source:  source,
		trials:  trials,
		metrics: m,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

func (h *QuizHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
		writeQuizError(w, "Invalid request body")
		return
	}

	req, err := quiz.Build(body.Topic, body.Level)
	if err != nil {
		writeQuizError(w, err.Error())
		return
	}

	id := auth.IdentityFromContext(r.Context())
	var trialUsed bool
	if !id.Authenticated() {
		trialUsed, err = h.trials.TrialUsed(r)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read trial flag")
			writeQuizError(w, "Failed to read trial state")
			return
		}
	}

	decision := quiz.CheckAccess(id, trialUsed)
	if !decision.Allowed {
		h.metrics.AccessDenied(decision.Reason)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, TrialExhaustedMessage)
		return
	}

	if h.source == nil {
		writeQuizError(w, "Quiz generation is not configured")
		return
	}
	questions, err := h.source.Generate(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Str("topic", req.Topic).Int("level", int(req.Level)).Msg("quiz generation failed")
		writeQuizError(w, generationMessage(err))
		return
	}

	if !id.Authenticated() {
		if err := h.trials.Recorder(r.Context()).MarkTrialUsed(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("failed to persist trial flag")
		}
		w.Header().Set(trial.HeaderFreeUsed, "true")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(questions); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode quiz")
	}
}

func generationMessage(err error) string {
	switch {
	case errors.Is(err, quiz.ErrContractViolation):
		return "The quiz generator returned an unusable quiz. Please try again."
	case errors.Is(err, quiz.ErrNetworkFailure):
		return "The quiz generator is unreachable. Please try again."
	default:
		return "Failed to generate quiz"
	}
}

func writeQuizError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
