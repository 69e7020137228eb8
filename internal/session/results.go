package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
	"github.com/gokatarajesh/ai-quiz/internal/metrics"
)

const recordTimeout = 5 * time.Second

type resultWriter interface {
	Record(ctx context.Context, params sqlcgen.InsertQuizResultParams) error
}

// ResultRecorder counts finished runs and persists them to the results table.
type ResultRecorder struct {
	store   resultWriter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

var _ CompletionHandler = (*ResultRecorder)(nil)

// NewResultRecorder creates a recorder. A nil store only updates metrics.
func NewResultRecorder(store resultWriter, m *metrics.Metrics, logger zerolog.Logger) *ResultRecorder {
	return &ResultRecorder{
		store:   store,
		metrics: m,
		logger:  logger.With().Str("component", "result_recorder").Logger(),
	}
}

// QuizCompleted is called from the reveal timer, so it carries its own deadline.
func (r *ResultRecorder) QuizCompleted(c Completion) {
	r.metrics.QuizCompleted(string(c.Result.Band))
	if r.store == nil {
		return
	}

	params := sqlcgen.InsertQuizResultParams{
		RunID:     repository.PGUUID(c.RunID),
		SessionID: repository.PGUUID(c.SessionID),
		ClientKey: repository.PGText(c.Owner.ClientKey),
		Topic:     c.Topic,
		Level:     int16(c.Level),
		Score:     int32(c.Result.Score),
		Total:     int32(c.Result.Total),
		Ratio:     c.Result.Ratio,
		Band:      string(c.Result.Band),
	}
	if c.Owner.UserID != "" {
		userID, err := uuid.Parse(c.Owner.UserID)
		if err != nil {
			r.logger.Warn().Err(err).Str("user_id", c.Owner.UserID).Msg("owner id is not a uuid; recording result anonymously")
		} else {
			params.UserID = repository.PGUUID(userID)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.store.Record(ctx, params); err != nil {
		r.logger.Error().Err(err).
			Str("run_id", c.RunID.String()).
			Str("session_id", c.SessionID.String()).
			Msg("failed to record quiz result")
		return
	}
	r.logger.Debug().
		Str("run_id", c.RunID.String()).
		Str("band", string(c.Result.Band)).
		Msg("quiz result recorded")
}
