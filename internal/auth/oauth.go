package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrOAuthNotConfigured is returned when no Google client id is set.
var ErrOAuthNotConfigured = errors.New("OAuth not configured (missing GOOGLE_CLIENT_ID)")

// OAuthConfig holds Google client credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthService handles the Google authorization code flow.
type OAuthService struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewOAuthService creates an OAuth service with provider credentials.
func NewOAuthService(cfg OAuthConfig, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "oauth").Logger(),
	}
}

// Configured reports whether a client id is present.
func (s *OAuthService) Configured() bool {
	return s.config.ClientID != ""
}

// StartOAuthFlow generates the authorization URL for Google OAuth.
func (s *OAuthService) StartOAuthFlow(state string) (string, error) {
	if !s.Configured() {
		return "", ErrOAuthNotConfigured
	}
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// HandleOAuthCallback exchanges the authorization code and fetches the user's profile.
func (s *OAuthService) HandleOAuthCallback(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if !s.Configured() {
		return nil, ErrOAuthNotConfigured
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth token exchange failed")
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info API returned status %d", resp.StatusCode)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderID: googleUser.ID,
		Email:      googleUser.Email,
		Name:       googleUser.Name,
		AvatarURL:  googleUser.Picture,
	}, nil
}
