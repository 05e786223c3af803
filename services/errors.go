package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the interview and analytics services. Endpoints
// map these onto HTTP status codes.
var (
	ErrInterviewNotFound  = errors.New("interview not found")
	ErrUnauthorizedAccess = errors.New("interview belongs to another user")
	ErrInterviewCompleted = errors.New("interview is already completed")
	ErrQuestionOutOfRange = errors.New("question number out of range")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// GenerationError reports that the model failed to produce the next question.
// The session is left unchanged so the caller can retry.
type GenerationError struct {
	QuestionNumber int
	Err            error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating question %d: %v", e.QuestionNumber, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ScoringError reports that the model failed to evaluate an answer. Report
// generation skips the affected question rather than failing outright.
type ScoringError struct {
	QuestionNumber int
	Err            error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring answer %d: %v", e.QuestionNumber, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}
