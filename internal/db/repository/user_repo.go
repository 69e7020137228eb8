package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

type userStore interface {
	CreateUser(ctx context.Context, arg sqlcgen.CreateUserParams) (sqlcgen.User, error)
	GetUserByEmail(ctx context.Context, email string) (sqlcgen.User, error)
	GetUserByID(ctx context.Context, userID pgtype.UUID) (sqlcgen.User, error)
	UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error
}

// UserRepository exposes typed DB operations required by sign-in flows.
type UserRepository struct {
	store userStore
}

// NewUserRepository wraps sqlc Queries for user-specific operations.
func NewUserRepository(store userStore) *UserRepository {
	return &UserRepository{store: store}
}

// Upsert inserts an account for a first sign-in, or touches last_login_at for a known email.
func (r *UserRepository) Upsert(ctx context.Context, params sqlcgen.CreateUserParams) (sqlcgen.User, error) {
	return r.store.CreateUser(ctx, params)
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (sqlcgen.User, error) {
	user, err := r.store.GetUserByEmail(ctx, email)
	return user, notFound(err)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (sqlcgen.User, error) {
	user, err := r.store.GetUserByID(ctx, PGUUID(userID))
	return user, notFound(err)
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return r.store.UpdateUserLogin(ctx, PGUUID(userID))
}

// PGUUID converts a uuid into its pgtype form.
func PGUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

// PGText returns a NULL text for the empty string.
func PGText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
