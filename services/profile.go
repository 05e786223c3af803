package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
	"golang.org/x/crypto/bcrypt"
)

// ProfileService manages the authenticated user's own account: profile
// reads and edits, password changes and account deletion.
type ProfileService struct {
	store repository.UserStore
}

func NewProfileService(store repository.UserStore) *ProfileService {
	return &ProfileService{store: store}
}

type ProfileResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	LinkedInProfile string    `json:"linkedin_profile,omitempty"`
	GithubProfile   string    `json:"github_profile,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UpdateProfileRequest carries partial profile edits. Nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name"`
	PhoneNumber     *string `json:"phone_number"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	LinkedInProfile *string `json:"linkedin_profile"`
	GithubProfile   *string `json:"github_profile"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// GetProfile returns the caller's profile from the store.
func (s *ProfileService) GetProfile(ctx context.Context, user *models.User) (*ProfileResponse, error) {
	current, err := s.loadUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return profileResponse(current), nil
}

// UpdateProfile applies the non-nil fields of the request and returns the
// updated profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *models.User, req UpdateProfileRequest) (*ProfileResponse, error) {
	current, err := s.loadUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		current.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		current.PhoneNumber = *req.PhoneNumber
	}
	if req.Bio != nil {
		current.Bio = *req.Bio
	}
	if req.LinkedInProfile != nil {
		current.LinkedInProfile = *req.LinkedInProfile
	}
	if req.GithubProfile != nil {
		current.GithubProfile = *req.GithubProfile
	}

	if err := s.store.UpdateUser(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("Profile updated", "user_id", current.ID, "email", current.Email)
	return profileResponse(current), nil
}

// ChangePassword replaces the password after verifying the old one and
// invalidates every outstanding refresh token.
func (s *ProfileService) ChangePassword(ctx context.Context, user *models.User, req ChangePasswordRequest) error {
	current, err := s.loadUser(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	current.Password = string(hashed)

	if err := s.store.UpdateUser(ctx, current); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.store.DeleteAllUserTokens(ctx, current.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	slog.Info("Password changed", "user_id", current.ID, "email", current.Email)
	return nil
}

// DeleteAccount removes the caller's account and revokes all tokens.
func (s *ProfileService) DeleteAccount(ctx context.Context, user *models.User) error {
	if err := s.store.DeleteAllUserTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("Account deleted", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *ProfileService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func profileResponse(user *models.User) *ProfileResponse {
	return &ProfileResponse{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		PhoneNumber:     user.PhoneNumber,
		Bio:             user.Bio,
		LinkedInProfile: user.LinkedInProfile,
		GithubProfile:   user.GithubProfile,
		CreatedAt:       user.CreatedAt,
	}
}
