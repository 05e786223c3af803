package repository

import (
	"context"

	"github.com/111KartoFan111/AiAssistant/models"
)

// UserStore covers account and token persistence for the auth layer.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteAllUserTokens(ctx context.Context, userID string) error
}

// InterviewStore covers session and transcript persistence. Reads that find
// nothing return (nil, nil); callers translate absence into their own error.
type InterviewStore interface {
	CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error
	UpdateInterviewSession(ctx context.Context, session *models.InterviewSession) error
	GetInterviewSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	GetInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error)
	GetCompletedInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error)

	CreateChatMessage(ctx context.Context, message *models.ChatMessage) error
	UpsertCandidateMessage(ctx context.Context, message *models.ChatMessage) error
	GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// EvaluationStore covers the at-most-one-per-(interview, question) answer
// evaluations. SaveEvaluationOnce returns the already stored row when the
// key exists, so repeated report generation never duplicates evaluations.
type EvaluationStore interface {
	GetEvaluation(ctx context.Context, interviewID string, questionNumber int) (*models.InterviewEvaluation, error)
	SaveEvaluationOnce(ctx context.Context, eval *models.InterviewEvaluation) error
	GetEvaluationsByInterview(ctx context.Context, interviewID string) ([]models.InterviewEvaluation, error)
	GetEvaluationsByInterviews(ctx context.Context, interviewIDs []string) ([]models.InterviewEvaluation, error)
}
