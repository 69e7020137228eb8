package auth

import (
	"github.com/google/uuid"
)

// OAuthProviderGoogle is the only supported sign-in provider.
const OAuthProviderGoogle = "google"

// User is a signed-in account.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   string
}

// TokenPair holds the issued access token.
type TokenPair struct {
	AccessToken string
	ExpiresIn   int64
}

// OAuthUserInfo contains user data from the OAuth provider.
type OAuthUserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}
