// source: users.sql

package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, display_name, avatar_url, oauth_provider, oauth_subject, last_login_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (email) DO UPDATE SET last_login_at = NOW()
RETURNING user_id, email, display_name, avatar_url, oauth_provider, oauth_subject, created_at, last_login_at
`

type CreateUserParams struct {
	Email         string      `json:"email"`
	DisplayName   string      `json:"display_name"`
	AvatarUrl     pgtype.Text `json:"avatar_url"`
	OauthProvider string      `json:"oauth_provider"`
	OauthSubject  pgtype.Text `json:"oauth_subject"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Email,
		arg.DisplayName,
		arg.AvatarUrl,
		arg.OauthProvider,
		arg.OauthSubject,
	)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.DisplayName,
		&i.AvatarUrl,
		&i.OauthProvider,
		&i.OauthSubject,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT user_id, email, display_name, avatar_url, oauth_provider, oauth_subject, created_at, last_login_at FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.DisplayName,
		&i.AvatarUrl,
		&i.OauthProvider,
		&i.OauthSubject,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT user_id, email, display_name, avatar_url, oauth_provider, oauth_subject, created_at, last_login_at FROM users
WHERE user_id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, userID pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, userID)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Email,
		&i.DisplayName,
		&i.AvatarUrl,
		&i.OauthProvider,
		&i.OauthSubject,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const updateUserLogin = `-- name: UpdateUserLogin :exec
UPDATE users SET last_login_at = NOW()
WHERE user_id = $1
`

func (q *Queries) UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, updateUserLogin, userID)
	return err
}
