package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type InterviewEndpoints struct {
	interviewService *InterviewService
	validate         *validator.Validate
}

func NewInterviewEndpoints(interviewService *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{
		interviewService: interviewService,
		validate:         validator.New(),
	}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/start", e.StartInterviewHandler)
		r.Get("/", e.GetHistoryHandler)
		r.Get("/{id}", e.GetDetailsHandler)
		r.Post("/{id}/messages", e.SubmitAnswerHandler)
		r.Post("/{id}/complete", e.CompleteInterviewHandler)
	})
}

func (e *InterviewEndpoints) StartInterviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := e.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := e.interviewService.StartInterview(r.Context(), user, req)
	if err != nil {
		slog.Error("Failed to start interview", "error", err, "user_id", user.ID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (e *InterviewEndpoints) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "id")

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := e.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := e.interviewService.SubmitAnswer(r.Context(), user, sessionID, req)
	if err != nil {
		slog.Error("Failed to submit answer", "error", err, "session_id", sessionID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *InterviewEndpoints) CompleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "id")

	if err := e.interviewService.CompleteInterview(r.Context(), user, sessionID); err != nil {
		slog.Error("Failed to complete interview", "error", err, "session_id", sessionID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Interview completed"})
}

func (e *InterviewEndpoints) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	items, err := e.interviewService.GetInterviewHistory(r.Context(), user)
	if err != nil {
		slog.Error("Failed to get interview history", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get interview history", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"interviews": items,
		"count":      len(items),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *InterviewEndpoints) GetDetailsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "id")

	details, err := e.interviewService.GetInterviewDetails(r.Context(), user, sessionID)
	if err != nil {
		slog.Error("Failed to get interview details", "error", err, "session_id", sessionID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// writeInterviewError maps service errors onto HTTP status codes.
func writeInterviewError(w http.ResponseWriter, err error) {
	var generationErr *GenerationError
	var scoringErr *ScoringError

	switch {
	case errors.Is(err, ErrInterviewNotFound):
		http.Error(w, "Interview not found", http.StatusNotFound)
	case errors.Is(err, ErrUnauthorizedAccess):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, ErrInterviewCompleted):
		http.Error(w, "Interview is already completed", http.StatusConflict)
	case errors.Is(err, ErrQuestionOutOfRange):
		http.Error(w, "Question number out of range", http.StatusBadRequest)
	case errors.As(err, &generationErr):
		http.Error(w, "Failed to generate question", http.StatusBadGateway)
	case errors.As(err, &scoringErr):
		http.Error(w, "Failed to evaluate answer", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
