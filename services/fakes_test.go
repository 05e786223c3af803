package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the GORM repository. It preserves
// insertion order for messages and enforces the one-evaluation-per-question
// rule the same way the database does.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*models.InterviewSession
	order    []string
	messages map[string][]models.ChatMessage
	evals    map[string]map[int]models.InterviewEvaluation
	seq      uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]*models.InterviewSession),
		messages: make(map[string][]models.ChatMessage),
		evals:    make(map[string]map[int]models.InterviewEvaluation),
	}
}

func (f *fakeStore) CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	copied := *session
	f.sessions[session.ID] = &copied
	f.order = append(f.order, session.ID)
	return nil
}

func (f *fakeStore) UpdateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeStore) GetInterviewSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (f *fakeStore) GetInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []models.InterviewSession
	for i := len(f.order) - 1; i >= 0; i-- {
		session := f.sessions[f.order[i]]
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

func (f *fakeStore) GetCompletedInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []models.InterviewSession
	for _, id := range f.order {
		session := f.sessions[id]
		if session.UserID == userID && session.Status == models.StatusCompleted {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

func (f *fakeStore) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendMessage(message)
	return nil
}

func (f *fakeStore) UpsertCandidateMessage(ctx context.Context, message *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message.ClientMessageID != nil {
		for _, existing := range f.messages[message.SessionID] {
			if existing.ClientMessageID != nil && *existing.ClientMessageID == *message.ClientMessageID {
				*message = existing
				return nil
			}
		}
	}
	f.appendMessage(message)
	return nil
}

func (f *fakeStore) appendMessage(message *models.ChatMessage) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	f.seq++
	message.Sequence = f.seq
	f.messages[message.SessionID] = append(f.messages[message.SessionID], *message)
}

func (f *fakeStore) GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatMessage(nil), f.messages[sessionID]...), nil
}

func (f *fakeStore) GetEvaluation(ctx context.Context, interviewID string, questionNumber int) (*models.InterviewEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[interviewID][questionNumber]
	if !ok {
		return nil, nil
	}
	copied := eval
	return &copied, nil
}

func (f *fakeStore) SaveEvaluationOnce(ctx context.Context, eval *models.InterviewEvaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	byQuestion, ok := f.evals[eval.InterviewID]
	if !ok {
		byQuestion = make(map[int]models.InterviewEvaluation)
		f.evals[eval.InterviewID] = byQuestion
	}
	if existing, ok := byQuestion[eval.QuestionNumber]; ok {
		*eval = existing
		return nil
	}
	if eval.ID == "" {
		eval.ID = uuid.New().String()
	}
	byQuestion[eval.QuestionNumber] = *eval
	return nil
}

func (f *fakeStore) GetEvaluationsByInterview(ctx context.Context, interviewID string) ([]models.InterviewEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var evals []models.InterviewEvaluation
	for _, eval := range f.evals[interviewID] {
		evals = append(evals, eval)
	}
	return evals, nil
}

func (f *fakeStore) GetEvaluationsByInterviews(ctx context.Context, interviewIDs []string) ([]models.InterviewEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var evals []models.InterviewEvaluation
	for _, id := range interviewIDs {
		for q := 1; q <= TotalQuestions; q++ {
			if eval, ok := f.evals[id][q]; ok {
				evals = append(evals, eval)
			}
		}
	}
	return evals, nil
}

// fakeAI answers generation and scoring calls from queued responses, falling
// back to canned text when the queue is empty. Errors are injected per call.
type fakeAI struct {
	mu sync.Mutex

	questions      []string
	generationErr  error
	generatorCalls int

	scoreResponses map[int]string
	scoringErrs    map[int]error
	scorerCalls    int
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		scoreResponses: make(map[int]string),
		scoringErrs:    make(map[int]error),
	}
}

func (f *fakeAI) GenerateInitialQuestion(ctx context.Context, position, jobDescription, language string, questionType models.QuestionType) (string, error) {
	return f.nextQuestion(1)
}

func (f *fakeAI) GenerateNextQuestion(ctx context.Context, history []models.ChatMessage, language string, questionType models.QuestionType, questionNumber, totalQuestions int) (string, error) {
	return f.nextQuestion(questionNumber)
}

func (f *fakeAI) nextQuestion(questionNumber int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generatorCalls++
	if f.generationErr != nil {
		err := f.generationErr
		f.generationErr = nil
		return "", err
	}
	if len(f.questions) > 0 {
		question := f.questions[0]
		f.questions = f.questions[1:]
		return question, nil
	}
	return fmt.Sprintf("Question %d?", questionNumber), nil
}

func (f *fakeAI) ScoreAnswer(ctx context.Context, question, answer, position string, questionType models.QuestionType) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scorerCalls++
	for number, err := range f.scoringErrs {
		if fmt.Sprintf("Question %d?", number) == question {
			delete(f.scoringErrs, number)
			return "", err
		}
	}
	for number, response := range f.scoreResponses {
		if fmt.Sprintf("Question %d?", number) == question {
			return response, nil
		}
	}
	return "Score: 7/10\nFeedback: Solid answer.\nStrengths:\n- Clear\nImprovements:\n- More detail", nil
}

// scoreText builds a well-formed scorer response for a given score.
func scoreText(score int, strengths, improvements []string) string {
	text := fmt.Sprintf("Score: %d/10\nFeedback: Feedback for score %d.\nStrengths:\n", score, score)
	for _, s := range strengths {
		text += "- " + s + "\n"
	}
	text += "Improvements:\n"
	for _, s := range improvements {
		text += "- " + s + "\n"
	}
	return text
}
