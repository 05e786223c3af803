package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
	"github.com/google/uuid"
)

// InterviewService drives the interview state machine: a session starts at
// question 1, advances one question per submitted answer, and completes when
// the curriculum is exhausted or the candidate ends it early.
type InterviewService struct {
	store     repository.InterviewStore
	generator QuestionGenerator
	registry  *ActiveSessionRegistry
}

func NewInterviewService(store repository.InterviewStore, generator QuestionGenerator, registry *ActiveSessionRegistry) *InterviewService {
	return &InterviewService{
		store:     store,
		generator: generator,
		registry:  registry,
	}
}

type StartInterviewRequest struct {
	Position       string `json:"position" validate:"required"`
	Company        string `json:"company"`
	JobDescription string `json:"job_description"`
	Language       string `json:"language" validate:"omitempty,oneof=en ru kz"`
}

type StartInterviewResponse struct {
	InterviewID           string              `json:"interview_id"`
	FirstQuestion         string              `json:"first_question"`
	QuestionType          models.QuestionType `json:"question_type"`
	CurrentQuestionNumber int                 `json:"current_question_number"`
	TotalQuestions        int                 `json:"total_questions"`
}

type SubmitAnswerRequest struct {
	Answer          string `json:"answer" validate:"required"`
	ClientMessageID string `json:"client_message_id"`
}

type SubmitAnswerResponse struct {
	Content               string              `json:"content"`
	QuestionType          models.QuestionType `json:"question_type,omitempty"`
	CurrentQuestionNumber int                 `json:"current_question_number"`
	TotalQuestions        int                 `json:"total_questions"`
	IsInterviewComplete   bool                `json:"is_interview_complete"`
}

type InterviewHistoryItem struct {
	ID             string                 `json:"id"`
	Position       string                 `json:"position"`
	Company        string                 `json:"company,omitempty"`
	JobDescription string                 `json:"job_description,omitempty"`
	Language       string                 `json:"language"`
	Status         models.InterviewStatus `json:"status"`
	StartTime      time.Time              `json:"start_time"`
}

type InterviewDetailResponse struct {
	InterviewHistoryItem
	Conversation []models.ChatMessage `json:"conversation"`
}

const completionMessage = "Thank you for completing the interview! You answered all 20 questions."

// StartInterview creates a session at question 1 and asks the model for the
// opening background question.
func (s *InterviewService) StartInterview(ctx context.Context, user *models.User, req StartInterviewRequest) (*StartInterviewResponse, error) {
	slog.Info("Starting interview", "user_id", user.ID, "position", req.Position)

	if req.Language == "" {
		req.Language = "en"
	}

	session := &models.InterviewSession{
		ID:                    uuid.New().String(),
		UserID:                user.ID,
		Position:              req.Position,
		Company:               req.Company,
		JobDescription:        req.JobDescription,
		Language:              req.Language,
		Status:                models.StatusInProgress,
		CurrentQuestionNumber: 1,
		TotalQuestions:        TotalQuestions,
	}
	if err := s.store.CreateInterviewSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create interview session: %w", err)
	}

	// Tracked from the moment the row exists: if question generation fails
	// below, the abandonment sweeper still owns the orphaned session.
	s.registry.Add(session.ID)

	questionType, err := QuestionTypeFor(1)
	if err != nil {
		return nil, err
	}

	question, err := s.generator.GenerateInitialQuestion(ctx, req.Position, req.JobDescription, req.Language, questionType)
	if err != nil {
		return nil, &GenerationError{QuestionNumber: 1, Err: err}
	}

	firstNumber := 1
	firstMessage := &models.ChatMessage{
		SessionID:      session.ID,
		Role:           models.RoleInterviewer,
		Content:        question,
		QuestionType:   &questionType,
		QuestionNumber: &firstNumber,
		Timestamp:      time.Now().UnixMilli(),
	}
	if err := s.store.CreateChatMessage(ctx, firstMessage); err != nil {
		return nil, fmt.Errorf("failed to save first question: %w", err)
	}

	return &StartInterviewResponse{
		InterviewID:           session.ID,
		FirstQuestion:         question,
		QuestionType:          questionType,
		CurrentQuestionNumber: 1,
		TotalQuestions:        TotalQuestions,
	}, nil
}

// SubmitAnswer records the candidate's answer and either advances to the
// next question or completes the interview after the final one. The answer
// is committed before question generation, so a generation failure leaves
// the answer durable and the question number unchanged; retrying with the
// same client message ID does not duplicate the answer.
func (s *InterviewService) SubmitAnswer(ctx context.Context, user *models.User, sessionID string, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	session, err := s.loadOwnedSession(ctx, user, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusCompleted {
		return nil, ErrInterviewCompleted
	}

	answer := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleCandidate,
		Content:   req.Answer,
		Timestamp: time.Now().UnixMilli(),
	}
	if req.ClientMessageID != "" {
		answer.ClientMessageID = &req.ClientMessageID
	}
	if err := s.store.UpsertCandidateMessage(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	next := session.CurrentQuestionNumber + 1
	if next > session.TotalQuestions {
		session.Status = models.StatusCompleted
		if err := s.store.UpdateInterviewSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to complete interview: %w", err)
		}
		s.registry.Remove(sessionID)
		slog.Info("Interview completed", "session_id", sessionID, "questions", session.TotalQuestions)

		return &SubmitAnswerResponse{
			Content:               completionMessage,
			CurrentQuestionNumber: session.TotalQuestions,
			TotalQuestions:        session.TotalQuestions,
			IsInterviewComplete:   true,
		}, nil
	}

	questionType, err := QuestionTypeFor(next)
	if err != nil {
		return nil, err
	}

	history, err := s.store.GetChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	question, err := s.generator.GenerateNextQuestion(ctx, history, session.Language, questionType, next, session.TotalQuestions)
	if err != nil {
		return nil, &GenerationError{QuestionNumber: next, Err: err}
	}

	questionMessage := &models.ChatMessage{
		SessionID:      sessionID,
		Role:           models.RoleInterviewer,
		Content:        question,
		QuestionType:   &questionType,
		QuestionNumber: &next,
		Timestamp:      time.Now().UnixMilli(),
	}
	if err := s.store.CreateChatMessage(ctx, questionMessage); err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}

	session.CurrentQuestionNumber = next
	if err := s.store.UpdateInterviewSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update interview session: %w", err)
	}

	s.registry.Touch(sessionID)

	return &SubmitAnswerResponse{
		Content:               question,
		QuestionType:          questionType,
		CurrentQuestionNumber: next,
		TotalQuestions:        session.TotalQuestions,
		IsInterviewComplete:   false,
	}, nil
}

// CompleteInterview ends a session early. Completing an already completed
// interview is a no-op.
func (s *InterviewService) CompleteInterview(ctx context.Context, user *models.User, sessionID string) error {
	session, err := s.loadOwnedSession(ctx, user, sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusCompleted {
		return nil
	}

	session.Status = models.StatusCompleted
	if err := s.store.UpdateInterviewSession(ctx, session); err != nil {
		return fmt.Errorf("failed to complete interview: %w", err)
	}
	s.registry.Remove(sessionID)
	slog.Info("Interview marked as completed", "session_id", sessionID)
	return nil
}

// GetInterviewHistory returns the user's sessions, most recent first.
func (s *InterviewService) GetInterviewHistory(ctx context.Context, user *models.User) ([]InterviewHistoryItem, error) {
	sessions, err := s.store.GetInterviewSessions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview history: %w", err)
	}

	items := make([]InterviewHistoryItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, historyItem(&session))
	}
	return items, nil
}

// GetInterviewDetails returns one session with its full transcript. Only the
// owner may read it.
func (s *InterviewService) GetInterviewDetails(ctx context.Context, user *models.User, sessionID string) (*InterviewDetailResponse, error) {
	session, err := s.loadOwnedSession(ctx, user, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.GetChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	return &InterviewDetailResponse{
		InterviewHistoryItem: historyItem(session),
		Conversation:         messages,
	}, nil
}

func (s *InterviewService) loadOwnedSession(ctx context.Context, user *models.User, sessionID string) (*models.InterviewSession, error) {
	session, err := s.store.GetInterviewSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview session: %w", err)
	}
	if session == nil {
		return nil, ErrInterviewNotFound
	}
	if session.UserID != user.ID {
		return nil, ErrUnauthorizedAccess
	}
	return session, nil
}

func historyItem(session *models.InterviewSession) InterviewHistoryItem {
	return InterviewHistoryItem{
		ID:             session.ID,
		Position:       session.Position,
		Company:        session.Company,
		JobDescription: session.JobDescription,
		Language:       session.Language,
		Status:         session.Status,
		StartTime:      session.CreatedAt,
	}
}
