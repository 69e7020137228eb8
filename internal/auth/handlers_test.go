package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/gokatarajesh/ai-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/ai-quiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/ai-quiz/internal/db/sqlc"
)

// fakeGoogle serves the token and userinfo endpoints used by the callback.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"g-42","email":"grace@example.com","name":"Grace","picture":"https://img/grace.png"}`)
	})
	return httptest.NewServer(mux)
}

func newTestHandlers(t *testing.T, repo *mockUserRepo, google *httptest.Server) *HTTPHandlers {
	t.Helper()
	oauthSvc := NewOAuthService(OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/v1/oauth/google/callback",
	}, zerolog.Nop())
	if google != nil {
		oauthSvc.config.Endpoint = oauth2.Endpoint{
			AuthURL:   google.URL + "/auth",
			TokenURL:  google.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
		oauthSvc.userInfoURL = google.URL + "/userinfo"
	}
	return NewHTTPHandlers(newTestService(repo), oauthSvc, false, zerolog.Nop())
}

func TestOAuthStartSetsStateCookie(t *testing.T) {
	h := newTestHandlers(t, new(mockUserRepo), nil)

	rec := httptest.NewRecorder()
	h.OAuthStart(rec, httptest.NewRequest(http.MethodGet, "/v1/oauth/google/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body["state"])

	authURL, err := url.Parse(body["auth_url"])
	require.NoError(t, err)
	assert.Equal(t, body["state"], authURL.Query().Get("state"))
	assert.Equal(t, "client-id", authURL.Query().Get("client_id"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.Equal(t, body["state"], cookies[0].Value)
}

func TestOAuthStartNotConfigured(t *testing.T) {
	h := NewHTTPHandlers(newTestService(new(mockUserRepo)), NewOAuthService(OAuthConfig{}, zerolog.Nop()), false, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.OAuthStart(rec, httptest.NewRequest(http.MethodGet, "/v1/oauth/google/start", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOAuthCallbackCreatesUserAndIssuesToken(t *testing.T) {
	google := fakeGoogle(t)
	defer google.Close()

	repo := new(mockUserRepo)
	userID := uuid.New()
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p sqlcgen.CreateUserParams) bool {
		return p.Email == "grace@example.com" && p.AvatarUrl.String == "https://img/grace.png"
	})).Return(sqlcgen.User{
		UserID:      pgtype.UUID{Bytes: userID, Valid: true},
		Email:       "grace@example.com",
		DisplayName: "Grace",
	}, nil)

	h := newTestHandlers(t, repo, google)

	req := httptest.NewRequest(http.MethodGet, "/v1/oauth/google/callback?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, userID.String(), body.UserID)
	assert.NotEmpty(t, body.AccessToken)
	repo.AssertExpectations(t)
}

func TestOAuthCallbackRejectsStateMismatch(t *testing.T) {
	h := newTestHandlers(t, new(mockUserRepo), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/oauth/google/callback?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "other"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.OAuthCallback(rec, httptest.NewRequest(http.MethodGet, "/v1/oauth/google/callback?state=s1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMe(t *testing.T) {
	repo := new(mockUserRepo)
	h := newTestHandlers(t, repo, nil)
	userID := uuid.New()

	repo.On("GetByID", mock.Anything, userID).Return(sqlcgen.User{
		UserID:      pgtype.UUID{Bytes: userID, Valid: true},
		Email:       "ada@example.com",
		DisplayName: "Ada",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req = req.WithContext(WithClaims(req.Context(), &jwt.Claims{UserID: userID}))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, true, body["authenticated"])
}

func TestGetMeUnknownUser(t *testing.T) {
	repo := new(mockUserRepo)
	h := newTestHandlers(t, repo, nil)
	userID := uuid.New()
	repo.On("GetByID", mock.Anything, userID).Return(sqlcgen.User{}, repository.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req = req.WithContext(WithClaims(context.Background(), &jwt.Claims{UserID: userID}))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
