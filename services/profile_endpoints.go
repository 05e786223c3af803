package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ProfileEndpoints struct {
	profileService *ProfileService
	authService    *AuthService
	validate       *validator.Validate
}

func NewProfileEndpoints(profileService *ProfileService, authService *AuthService) *ProfileEndpoints {
	return &ProfileEndpoints{
		profileService: profileService,
		authService:    authService,
		validate:       validator.New(),
	}
}

func (e *ProfileEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", e.GetProfileHandler)
		r.Put("/", e.UpdateProfileHandler)
		r.Post("/change-password", e.ChangePasswordHandler)
		r.Delete("/account", e.DeleteAccountHandler)
	})
}

func (e *ProfileEndpoints) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	profile, err := e.profileService.GetProfile(r.Context(), user)
	if err != nil {
		slog.Error("Failed to fetch profile", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (e *ProfileEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := e.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := e.profileService.UpdateProfile(r.Context(), user, req)
	if err != nil {
		slog.Error("Failed to update profile", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (e *ProfileEndpoints) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := e.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := e.profileService.ChangePassword(r.Context(), user, req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "Old password is incorrect", http.StatusBadRequest)
			return
		}
		slog.Error("Failed to change password", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	// All refresh tokens were revoked along with the old password.
	e.authService.ClearAuthCookies(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Password changed successfully"})
}

func (e *ProfileEndpoints) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	if err := e.profileService.DeleteAccount(r.Context(), user); err != nil {
		slog.Error("Failed to delete account", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	e.authService.ClearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}
