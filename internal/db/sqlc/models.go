package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	UserID        pgtype.UUID        `json:"user_id"`
	Email         string             `json:"email"`
	DisplayName   string             `json:"display_name"`
	AvatarUrl     pgtype.Text        `json:"avatar_url"`
	OauthProvider string             `json:"oauth_provider"`
	OauthSubject  pgtype.Text        `json:"oauth_subject"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	LastLoginAt   pgtype.Timestamptz `json:"last_login_at"`
}

type QuizResult struct {
	ResultID    pgtype.UUID        `json:"result_id"`
	RunID       pgtype.UUID        `json:"run_id"`
	SessionID   pgtype.UUID        `json:"session_id"`
	UserID      pgtype.UUID        `json:"user_id"`
	ClientKey   pgtype.Text        `json:"client_key"`
	Topic       string             `json:"topic"`
	Level       int16              `json:"level"`
	Score       int32              `json:"score"`
	Total       int32              `json:"total"`
	Ratio       float64            `json:"ratio"`
	Band        string             `json:"band"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
}
