package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/ai-quiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
)

type userRepo interface {
	Upsert(ctx context.Context, params sqlcgen.CreateUserParams) (sqlcgen.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (sqlcgen.User, error)
}

// Service turns provider profiles into local accounts and tokens.
type Service struct {
	users    userRepo
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// NewService creates an authentication service.
func NewService(users userRepo, tokenMgr *jwt.Manager, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		tokenMgr: tokenMgr,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// SignIn creates the account on first sign-in (keyed by email) and issues a token.
func (s *Service) SignIn(ctx context.Context, provider string, info *OAuthUserInfo) (*User, *TokenPair, error) {
	if info == nil || info.Email == "" {
		return nil, nil, fmt.Errorf("OAuth provider did not return email")
	}

	displayName := info.Name
	if displayName == "" {
		displayName = info.Email
	}

	row, err := s.users.Upsert(ctx, sqlcgen.CreateUserParams{
		Email:         info.Email,
		DisplayName:   displayName,
		AvatarUrl:     repository.PGText(info.AvatarURL),
		OauthProvider: provider,
		OauthSubject:  repository.PGText(info.ProviderID),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create OAuth user: %w", err)
	}

	user := userFromRow(row)
	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("provider", provider).Msg("OAuth user signed in")
	return user, tokens, nil
}

// GetUser loads the account behind a verified token.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userFromRow(row), nil
}

// ValidateToken verifies an access token.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	access, err := s.tokenMgr.GenerateAccessToken(jwt.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken: access,
		ExpiresIn:   int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func userFromRow(row sqlcgen.User) *User {
	return &User{
		ID:          uuid.UUID(row.UserID.Bytes),
		Email:       row.Email,
		DisplayName: row.DisplayName,
		AvatarURL:   row.AvatarUrl.String,
	}
}
