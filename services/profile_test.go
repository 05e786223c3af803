package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGetAndUpdateProfile(t *testing.T) {
	store := newFakeUserStore()
	auth := NewAuthService(store, "test-secret")
	service := NewProfileService(store)
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)
	user := signup.User

	profile, err := service.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.Equal(t, "New User", profile.FullName)
	assert.Empty(t, profile.Bio)

	updated, err := service.UpdateProfile(ctx, user, UpdateProfileRequest{
		Bio:           strPtr("Backend engineer practicing interviews."),
		GithubProfile: strPtr("https://github.com/newuser"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer practicing interviews.", updated.Bio)
	assert.Equal(t, "https://github.com/newuser", updated.GithubProfile)

	// Nil fields are left untouched by a later partial update.
	updated, err = service.UpdateProfile(ctx, user, UpdateProfileRequest{
		PhoneNumber: strPtr("+7 700 000 0000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "+7 700 000 0000", updated.PhoneNumber)
	assert.Equal(t, "Backend engineer practicing interviews.", updated.Bio)
	assert.Equal(t, "New User", updated.FullName)
}

func TestChangePassword(t *testing.T) {
	store := newFakeUserStore()
	auth := NewAuthService(store, "test-secret")
	service := NewProfileService(store)
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)
	user := signup.User

	err = service.ChangePassword(ctx, user, ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "fresh-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, service.ChangePassword(ctx, user, ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "fresh-password",
	}))

	// The old refresh token was revoked with the old password.
	_, err = auth.RefreshToken(ctx, signup.RefreshToken)
	assert.Error(t, err)

	_, err = auth.Login(ctx, "new@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := auth.Login(ctx, "new@example.com", "fresh-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, login.User.ID)
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeUserStore()
	auth := NewAuthService(store, "test-secret")
	service := NewProfileService(store)
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)

	require.NoError(t, service.DeleteAccount(ctx, signup.User))

	deleted, err := store.GetUserByID(ctx, signup.User.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	_, err = auth.RefreshToken(ctx, signup.RefreshToken)
	assert.Error(t, err)

	_, err = auth.Login(ctx, "new@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
