package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.InterviewSession{},
		&models.ChatMessage{},
		&models.InterviewEvaluation{},
	)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.ID)
		return err
	}
	slog.Info("User updated", "user_id", user.ID)
	return nil
}

func (r *GORMRepository) DeleteUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		slog.Error("Failed to delete user", "error", err, "user_id", userID)
		return err
	}
	slog.Info("User deleted", "user_id", userID)
	return nil
}

// Token operations
func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Interview session operations
func (r *GORMRepository) CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err)
		return err
	}
	slog.Info("Interview session created", "session_id", session.ID, "user_id", session.UserID, "position", session.Position)
	return nil
}

func (r *GORMRepository) UpdateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		slog.Error("Failed to update interview session", "error", err, "session_id", session.ID)
		return err
	}
	return nil
}

// GetInterviewSession gets an interview session by ID without user check
func (r *GORMRepository) GetInterviewSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview session", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) GetInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get interview sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

func (r *GORMRepository) GetCompletedInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get completed interview sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// Chat message operations
func (r *GORMRepository) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to create chat message", "error", err, "session_id", message.SessionID)
		return err
	}
	return nil
}

// UpsertCandidateMessage records a candidate answer at most once per client
// message ID. A retry with the same ID loads the stored row instead of
// inserting a duplicate; messages without an ID always insert.
func (r *GORMRepository) UpsertCandidateMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ClientMessageID == nil {
		return r.CreateChatMessage(ctx, message)
	}
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND client_message_id = ?", message.SessionID, *message.ClientMessageID).
		FirstOrCreate(message).Error
	if err != nil {
		slog.Error("Failed to upsert candidate message", "error", err, "session_id", message.SessionID)
		return err
	}
	return nil
}

func (r *GORMRepository) GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp, sequence").
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get chat messages", "error", err, "session_id", sessionID)
		return nil, err
	}
	return messages, nil
}

// Evaluation operations
func (r *GORMRepository) GetEvaluation(ctx context.Context, interviewID string, questionNumber int) (*models.InterviewEvaluation, error) {
	var eval models.InterviewEvaluation
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND question_number = ?", interviewID, questionNumber).
		First(&eval).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get evaluation", "error", err, "interview_id", interviewID, "question_number", questionNumber)
		return nil, err
	}
	return &eval, nil
}

// SaveEvaluationOnce stores an evaluation unless one already exists for the
// same interview and question. When a row exists, eval is overwritten with
// the stored values and nothing is written.
func (r *GORMRepository) SaveEvaluationOnce(ctx context.Context, eval *models.InterviewEvaluation) error {
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND question_number = ?", eval.InterviewID, eval.QuestionNumber).
		FirstOrCreate(eval).Error
	if err != nil {
		slog.Error("Failed to save evaluation", "error", err, "interview_id", eval.InterviewID, "question_number", eval.QuestionNumber)
		return err
	}
	return nil
}

func (r *GORMRepository) GetEvaluationsByInterview(ctx context.Context, interviewID string) ([]models.InterviewEvaluation, error) {
	var evals []models.InterviewEvaluation
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("question_number").
		Find(&evals).Error
	if err != nil {
		slog.Error("Failed to get evaluations", "error", err, "interview_id", interviewID)
		return nil, err
	}
	return evals, nil
}

func (r *GORMRepository) GetEvaluationsByInterviews(ctx context.Context, interviewIDs []string) ([]models.InterviewEvaluation, error) {
	if len(interviewIDs) == 0 {
		return nil, nil
	}
	var evals []models.InterviewEvaluation
	err := r.db.WithContext(ctx).
		Where("interview_id IN ?", interviewIDs).
		Find(&evals).Error
	if err != nil {
		slog.Error("Failed to get evaluations for interviews", "error", err, "count", len(interviewIDs))
		return nil, err
	}
	return evals, nil
}
