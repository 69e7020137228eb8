// source: quiz_results.sql

package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertQuizResult = `-- name: InsertQuizResult :one
INSERT INTO quiz_results (run_id, session_id, user_id, client_key, topic, level, score, total, ratio, band)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id) DO NOTHING
RETURNING result_id, run_id, session_id, user_id, client_key, topic, level, score, total, ratio, band, completed_at
`

type InsertQuizResultParams struct {
	RunID     pgtype.UUID `json:"run_id"`
	SessionID pgtype.UUID `json:"session_id"`
	UserID    pgtype.UUID `json:"user_id"`
	ClientKey pgtype.Text `json:"client_key"`
	Topic     string      `json:"topic"`
	Level     int16       `json:"level"`
	Score     int32       `json:"score"`
	Total     int32       `json:"total"`
	Ratio     float64     `json:"ratio"`
	Band      string      `json:"band"`
}

func (q *Queries) InsertQuizResult(ctx context.Context, arg InsertQuizResultParams) (QuizResult, error) {
	row := q.db.QueryRow(ctx, insertQuizResult,
		arg.RunID,
		arg.SessionID,
		arg.UserID,
		arg.ClientKey,
		arg.Topic,
		arg.Level,
		arg.Score,
		arg.Total,
		arg.Ratio,
		arg.Band,
	)
	var i QuizResult
	err := row.Scan(
		&i.ResultID,
		&i.RunID,
		&i.SessionID,
		&i.UserID,
		&i.ClientKey,
		&i.Topic,
		&i.Level,
		&i.Score,
		&i.Total,
		&i.Ratio,
		&i.Band,
		&i.CompletedAt,
	)
	return i, err
}

const listQuizResultsByUser = `-- name: ListQuizResultsByUser :many
SELECT result_id, run_id, session_id, user_id, client_key, topic, level, score, total, ratio, band, completed_at FROM quiz_results
WHERE user_id = $1
ORDER BY completed_at DESC
LIMIT $2
`

type ListQuizResultsByUserParams struct {
	UserID pgtype.UUID `json:"user_id"`
	Limit  int32       `json:"limit"`
}

func (q *Queries) ListQuizResultsByUser(ctx context.Context, arg ListQuizResultsByUserParams) ([]QuizResult, error) {
	rows, err := q.db.Query(ctx, listQuizResultsByUser, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizResult
	for rows.Next() {
		var i QuizResult
		if err := rows.Scan(
			&i.ResultID,
			&i.RunID,
			&i.SessionID,
			&i.UserID,
			&i.ClientKey,
			&i.Topic,
			&i.Level,
			&i.Score,
			&i.Total,
			&i.Ratio,
			&i.Band,
			&i.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
