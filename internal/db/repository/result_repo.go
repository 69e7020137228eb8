package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
)

const defaultHistoryLimit = 20

type resultStore interface {
	InsertQuizResult(ctx context.Context, arg sqlcgen.InsertQuizResultParams) (sqlcgen.QuizResult, error)
	ListQuizResultsByUser(ctx context.Context, arg sqlcgen.ListQuizResultsByUserParams) ([]sqlcgen.QuizResult, error)
}

// ResultRepository stores completed quiz outcomes.
type ResultRepository struct {
	store resultStore
}

func NewResultRepository(store resultStore) *ResultRepository {
	return &ResultRepository{store: store}
}

// Record inserts the result of one quiz run. Recording the same run twice is a no-op.
func (r *ResultRepository) Record(ctx context.Context, params sqlcgen.InsertQuizResultParams) error {
	_, err := r.store.InsertQuizResult(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// ListForUser returns the user's most recent results, newest first.
func (r *ResultRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]sqlcgen.QuizResult, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	return r.store.ListQuizResultsByUser(ctx, sqlcgen.ListQuizResultsByUserParams{
		UserID: PGUUID(userID),
		Limit:  int32(limit),
	})
}
