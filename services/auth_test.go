package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	return nil
}

func (f *fakeUserStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeUserStore) GetRefreshToken(ctx context.Context, hashedToken string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[hashedToken]
	if !ok || time.Now().After(token.ExpiresAt) {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

func (f *fakeUserStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, key)
		}
	}
	return nil
}

func TestSignupAndLogin(t *testing.T) {
	store := newFakeUserStore()
	service := NewAuthService(store, "test-secret")
	ctx := context.Background()

	signup, err := service.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)
	assert.NotEmpty(t, signup.User.ID)
	assert.NotEmpty(t, signup.AccessToken)
	assert.NotEmpty(t, signup.RefreshToken)

	_, err = service.Signup(ctx, "new@example.com", "password123", "New User")
	assert.ErrorIs(t, err, ErrUserExists)

	login, err := service.Login(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, login.User.ID)

	_, err = service.Login(ctx, "new@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyAccessToken(t *testing.T) {
	store := newFakeUserStore()
	service := NewAuthService(store, "test-secret")
	ctx := context.Background()

	signup, err := service.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)

	user, err := service.VerifyAccessToken(ctx, signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, user.ID)
	assert.Equal(t, "new@example.com", user.Email)

	_, err = service.VerifyAccessToken(ctx, "not-a-token")
	assert.Error(t, err)

	// A token signed with a different secret must be rejected.
	other := NewAuthService(store, "other-secret")
	_, err = other.VerifyAccessToken(ctx, signup.AccessToken)
	assert.Error(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	store := newFakeUserStore()
	service := NewAuthService(store, "test-secret")
	ctx := context.Background()

	signup, err := service.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(ctx, signup.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	// Only the SHA256 hash is stored, never the raw token.
	store.mu.Lock()
	_, rawStored := store.tokens[signup.RefreshToken]
	store.mu.Unlock()
	assert.False(t, rawStored)

	require.NoError(t, service.Logout(ctx, signup.User.ID))
	_, err = service.RefreshToken(ctx, signup.RefreshToken)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	store := newFakeUserStore()
	service := NewAuthService(store, "test-secret")
	ctx := context.Background()

	signup, err := service.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)

	handler := service.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value("user").(*models.User)
		require.True(t, ok)
		assert.Equal(t, signup.User.ID, user.ID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signup.AccessToken})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No cookies at all is rejected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An expired access token falls back to the refresh cookie and reissues
	// the access cookie.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/interviews", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "garbage"})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: signup.RefreshToken})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	reissued := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "access_token" && cookie.Value != "" {
			reissued = true
		}
	}
	assert.True(t, reissued)
}
