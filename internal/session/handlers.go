package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
	"github.com/gokatarajesh/ai-quiz/internal/metrics"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
	httperrors "github.com/gokatarajesh/ai-quiz/pkg/http/errors"
)

type resultLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]sqlcgen.QuizResult, error)
}

// HTTPHandlers exposes quiz sessions over REST.
type HTTPHandlers struct {
	registry *Registry
	trials   *trial.Resolver
	results  resultLister
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewHTTPHandlers(registry *Registry, trials *trial.Resolver, results resultLister, m *metrics.Metrics, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		registry: registry,
		trials:   trials,
		results:  results,
		metrics:  m,
		logger:   logger.With().Str("component", "session_http").Logger(),
	}
}

// StartRequest is the body of POST /v1/sessions and POST /v1/sessions/{id}/start.
type StartRequest struct {
	Topic string `json:"topic"`
	Level int    `json:"level"`
}

// AnswerRequest is the body of POST /v1/sessions/{id}/answer.
type AnswerRequest struct {
	Choice string `json:"choice"`
}

// ResultResponse is one entry of the caller's quiz history.
type ResultResponse struct {
	RunID       string    `json:"run_id"`
	Topic       string    `json:"topic"`
	Level       int       `json:"level"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Ratio       float64   `json:"ratio"`
	Band        string    `json:"band"`
	CompletedAt time.Time `json:"completed_at"`
}

// Create handles POST /v1/sessions: it creates a session and starts its first quiz.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	owner := OwnerFromContext(r.Context())
	if owner.Empty() {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Client key cookie is required")
		return
	}

	sess := h.registry.Create(owner, h.trials.Recorder(r.Context()))
	if err := h.start(w, r, sess, req); err != nil {
		h.registry.Remove(sess.ID, "start_failed")
		return
	}
	h.respondJSON(w, http.StatusCreated, sess.View())
}

// Start handles POST /v1/sessions/{id}/start.
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if err := h.start(w, r, sess, req); err != nil {
		return
	}
	h.respondJSON(w, http.StatusOK, sess.View())
}

// start runs the gate and generation, writing the error response itself on failure.
func (h *HTTPHandlers) start(w http.ResponseWriter, r *http.Request, sess *Session, req StartRequest) error {
	id := auth.IdentityFromContext(r.Context())

	var trialUsed bool
	if !id.Authenticated() {
		used, err := h.trials.TrialUsed(r)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read trial flag")
			httperrors.RespondInternalError(w, "Failed to read trial state")
			return err
		}
		trialUsed = used
	}

	err := sess.Start(r.Context(), id, trialUsed, req.Topic, req.Level)
	if err != nil {
		var denied *quiz.AccessDeniedError
		if errors.As(err, &denied) {
			h.metrics.AccessDenied(denied.Reason)
		}
		respondQuizError(w, r, err)
		return err
	}

	if !id.Authenticated() {
		w.Header().Set(trial.HeaderFreeUsed, "true")
	}
	return nil
}

// Get handles GET /v1/sessions/{id}.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, sess.View())
}

// Answer handles POST /v1/sessions/{id}/answer.
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if err := sess.SelectAnswer(req.Choice); err != nil {
		respondQuizError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.View())
}

// Restart handles POST /v1/sessions/{id}/restart.
func (h *HTTPHandlers) Restart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sess.Restart()
	h.respondJSON(w, http.StatusOK, sess.View())
}

// Delete handles DELETE /v1/sessions/{id}.
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.registry.Remove(sess.ID, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Results handles GET /v1/users/me/results. It requires a signed-in caller.
func (h *HTTPHandlers) Results(w http.ResponseWriter, r *http.Request) {
	claims := auth.IdentityFromContext(r.Context()).Claims()
	if claims == nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	if h.results == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Result history is not available")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.results.ListForUser(r.Context(), claims.UserID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("failed to list results")
		httperrors.RespondInternalError(w, "Failed to load results")
		return
	}

	out := make([]ResultResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ResultResponse{
			RunID:       uuid.UUID(row.RunID.Bytes).String(),
			Topic:       row.Topic,
			Level:       int(row.Level),
			Score:       int(row.Score),
			Total:       int(row.Total),
			Ratio:       row.Ratio,
			Band:        row.Band,
			CompletedAt: row.CompletedAt.Time,
		})
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

func (h *HTTPHandlers) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return nil, false
	}
	sess, err := h.registry.Get(id, OwnerFromContext(r.Context()))
	if err != nil {
		respondQuizError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
