package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// seedCompletedInterview stores a completed session whose transcript holds
// one interviewer/candidate pair per listed question number.
func seedCompletedInterview(t *testing.T, store *fakeStore, userID string, questionNumbers ...int) string {
	t.Helper()
	ctx := context.Background()

	session := &models.InterviewSession{
		UserID:                userID,
		Position:              "Backend Engineer",
		Language:              "en",
		Status:                models.StatusCompleted,
		CurrentQuestionNumber: TotalQuestions,
		TotalQuestions:        TotalQuestions,
	}
	require.NoError(t, store.CreateInterviewSession(ctx, session))

	for _, number := range questionNumbers {
		number := number
		questionType, err := QuestionTypeFor(number)
		require.NoError(t, err)

		require.NoError(t, store.CreateChatMessage(ctx, &models.ChatMessage{
			SessionID:      session.ID,
			Role:           models.RoleInterviewer,
			Content:        fmt.Sprintf("Question %d?", number),
			QuestionType:   &questionType,
			QuestionNumber: &number,
		}))
		require.NoError(t, store.CreateChatMessage(ctx, &models.ChatMessage{
			SessionID: session.ID,
			Role:      models.RoleCandidate,
			Content:   fmt.Sprintf("Answer %d.", number),
		}))
	}

	return session.ID
}

func seedEvaluation(t *testing.T, store *fakeStore, interviewID string, questionNumber, score int, strengths, improvements []string) {
	t.Helper()
	questionType, err := QuestionTypeFor(questionNumber)
	require.NoError(t, err)

	require.NoError(t, store.SaveEvaluationOnce(context.Background(), &models.InterviewEvaluation{
		InterviewID:    interviewID,
		QuestionNumber: questionNumber,
		QuestionType:   questionType,
		Score:          score,
		Feedback:       fmt.Sprintf("Feedback %d.", questionNumber),
		Strengths:      datatypes.JSONSlice[string](strengths),
		Improvements:   datatypes.JSONSlice[string](improvements),
	}))
}

func TestGenerateInterviewReportAverages(t *testing.T) {
	store := newFakeStore()
	ai := newFakeAI()
	service := NewAnalyticsService(store, store, ai)
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 14, 15, 16, 17)
	for i, score := range []int{4, 6, 8, 10} {
		seedEvaluation(t, store, interviewID, 14+i, score, []string{fmt.Sprintf("Strength %d", i)}, []string{fmt.Sprintf("Gap %d", i)})
	}

	report, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)

	assert.Equal(t, 0, ai.scorerCalls, "stored evaluations must be reused")
	assert.InDelta(t, 7.0, report.OverallScore, 1e-9)
	assert.Equal(t, 4, report.TotalQuestions)

	skillName := models.QuestionTypeTechnical.SkillName()
	require.Contains(t, report.SkillsAnalysis, skillName)
	analysis := report.SkillsAnalysis[skillName]
	assert.InDelta(t, 7.0, analysis.AverageScore, 1e-9)
	assert.Equal(t, 4, analysis.QuestionsCount)
	assert.Equal(t, "Good", analysis.Performance)
}

func TestGenerateInterviewReportScoresLazilyOnce(t *testing.T) {
	store := newFakeStore()
	ai := newFakeAI()
	service := NewAnalyticsService(store, store, ai)
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 1, 2)

	first, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 2, ai.scorerCalls)
	assert.Equal(t, 2, first.TotalQuestions)

	second, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 2, ai.scorerCalls, "second report must reuse stored evaluations")
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.QuestionEvaluations, second.QuestionEvaluations)
}

func TestGenerateInterviewReportSkipsFailedScoring(t *testing.T) {
	store := newFakeStore()
	ai := newFakeAI()
	ai.scoringErrs[1] = errors.New("model unavailable")
	service := NewAnalyticsService(store, store, ai)
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 1, 2)

	report, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalQuestions)
	assert.Equal(t, 2, report.QuestionEvaluations[0].QuestionNumber)

	// The failed question has no stored row, so a later report scores it.
	report, err = service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalQuestions)
}

func TestGenerateInterviewReportTopPhrases(t *testing.T) {
	store := newFakeStore()
	service := NewAnalyticsService(store, store, newFakeAI())
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 1, 2, 3)
	seedEvaluation(t, store, interviewID, 1, 8, []string{"Clear", "Concise", "Clear"}, nil)
	seedEvaluation(t, store, interviewID, 2, 8, []string{"Concise", "Structured", "Thorough"}, nil)
	seedEvaluation(t, store, interviewID, 3, 8, []string{"Calm", "Curious", "Precise"}, nil)

	report, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Clear", "Concise", "Structured", "Thorough", "Calm"}, report.Strengths)
}

func TestGenerateInterviewReportRecommendations(t *testing.T) {
	store := newFakeStore()
	service := NewAnalyticsService(store, store, newFakeAI())
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 1, 14)
	seedEvaluation(t, store, interviewID, 1, 3, nil, nil)
	seedEvaluation(t, store, interviewID, 14, 9, nil, nil)

	report, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "Good results. There are areas for improvement.", report.Recommendations[0])

	weakSkill := fmt.Sprintf("Pay more attention to the skill: %s (current score: 3.0/10)",
		models.QuestionTypeBackground.SkillName())
	assert.Contains(t, report.Recommendations, weakSkill)
}

func TestGenerateInterviewReportSkipsOrphanAnswers(t *testing.T) {
	store := newFakeStore()
	ai := newFakeAI()
	service := NewAnalyticsService(store, store, ai)
	ctx := context.Background()
	user := testUser()

	interviewID := seedCompletedInterview(t, store, user.ID, 1)
	// A candidate turn with no interviewer question before it carries no
	// question number and cannot be scored.
	require.NoError(t, store.CreateChatMessage(ctx, &models.ChatMessage{
		SessionID: interviewID,
		Role:      models.RoleCandidate,
		Content:   "Stray follow-up.",
	}))

	report, err := service.GenerateInterviewReport(ctx, user, interviewID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalQuestions)
	assert.Equal(t, 1, ai.scorerCalls)
}

func TestGenerateInterviewReportAccessControl(t *testing.T) {
	store := newFakeStore()
	service := NewAnalyticsService(store, store, newFakeAI())
	ctx := context.Background()
	user := testUser()

	_, err := service.GenerateInterviewReport(ctx, user, "missing-id")
	assert.ErrorIs(t, err, ErrInterviewNotFound)

	interviewID := seedCompletedInterview(t, store, "someone-else", 1)
	_, err = service.GenerateInterviewReport(ctx, user, interviewID)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)
}
