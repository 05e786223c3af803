package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
)

// AnalyticsService builds per-interview reports. Evaluations are created
// lazily: the first report request scores every unevaluated answer and
// persists the result, so later requests reuse the same rows.
type AnalyticsService struct {
	store       repository.InterviewStore
	evaluations repository.EvaluationStore
	scorer      AnswerScorer
}

func NewAnalyticsService(store repository.InterviewStore, evaluations repository.EvaluationStore, scorer AnswerScorer) *AnalyticsService {
	return &AnalyticsService{
		store:       store,
		evaluations: evaluations,
		scorer:      scorer,
	}
}

// SkillAnalysis summarizes one skill category of an interview.
type SkillAnalysis struct {
	SkillName      string   `json:"skill_name"`
	AverageScore   float64  `json:"average_score"`
	QuestionsCount int      `json:"questions_count"`
	Performance    string   `json:"performance"`
	KeyPoints      []string `json:"key_points"`
}

// InterviewReport is the full post-interview breakdown.
type InterviewReport struct {
	InterviewID         string                       `json:"interview_id"`
	OverallScore        float64                      `json:"overall_score"`
	TotalQuestions      int                          `json:"total_questions"`
	SkillsAnalysis      map[string]SkillAnalysis     `json:"skills_analysis"`
	Strengths           []string                     `json:"strengths"`
	Weaknesses          []string                     `json:"weaknesses"`
	Recommendations     []string                     `json:"recommendations"`
	QuestionEvaluations []models.InterviewEvaluation `json:"question_evaluations"`
}

// GenerateInterviewReport scores any answers that have no stored evaluation
// yet, then aggregates all evaluations into a report. A scoring failure
// skips that one question rather than failing the whole report.
func (s *AnalyticsService) GenerateInterviewReport(ctx context.Context, user *models.User, interviewID string) (*InterviewReport, error) {
	session, err := s.store.GetInterviewSession(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview session: %w", err)
	}
	if session == nil {
		return nil, ErrInterviewNotFound
	}
	if session.UserID != user.ID {
		return nil, ErrUnauthorizedAccess
	}

	slog.Info("Generating report", "interview_id", interviewID)

	messages, err := s.store.GetChatMessages(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	evaluations := s.collectEvaluations(ctx, session, messages)

	report := &InterviewReport{
		InterviewID:         interviewID,
		OverallScore:        meanScore(evaluations),
		TotalQuestions:      len(evaluations),
		SkillsAnalysis:      analyzeSkills(evaluations),
		Strengths:           collectDistinct(evaluations, 5, strengthsOf),
		Weaknesses:          collectDistinct(evaluations, 5, improvementsOf),
		QuestionEvaluations: evaluations,
	}
	report.Recommendations = buildRecommendations(report.SkillsAnalysis, report.OverallScore)

	return report, nil
}

// collectEvaluations walks the transcript pairing each candidate answer with
// the interviewer question before it, reusing stored evaluations and scoring
// the rest.
func (s *AnalyticsService) collectEvaluations(ctx context.Context, session *models.InterviewSession, messages []models.ChatMessage) []models.InterviewEvaluation {
	var evaluations []models.InterviewEvaluation

	for i, msg := range messages {
		if msg.Role != models.RoleCandidate || i == 0 {
			continue
		}
		question := messages[i-1]
		if question.Role != models.RoleInterviewer || question.QuestionNumber == nil || question.QuestionType == nil {
			continue
		}
		questionNumber := *question.QuestionNumber

		existing, err := s.evaluations.GetEvaluation(ctx, session.ID, questionNumber)
		if err != nil {
			slog.Error("Failed to look up evaluation, skipping question", "interview_id", session.ID, "question_number", questionNumber, "error", err)
			continue
		}
		if existing != nil {
			evaluations = append(evaluations, *existing)
			continue
		}

		eval, err := s.evaluateAnswer(ctx, session, question, msg)
		if err != nil {
			slog.Error("Failed to evaluate answer, skipping question", "interview_id", session.ID, "question_number", questionNumber, "error", err)
			continue
		}
		evaluations = append(evaluations, *eval)
	}

	return evaluations
}

func (s *AnalyticsService) evaluateAnswer(ctx context.Context, session *models.InterviewSession, question, answer models.ChatMessage) (*models.InterviewEvaluation, error) {
	questionType := *question.QuestionType

	response, err := s.scorer.ScoreAnswer(ctx, question.Content, answer.Content, session.Position, questionType)
	if err != nil {
		return nil, &ScoringError{QuestionNumber: *question.QuestionNumber, Err: err}
	}

	parsed, degraded := ParseEvaluation(response, questionType)
	if degraded {
		slog.Warn("Evaluation response partially unparseable, defaults applied",
			"interview_id", session.ID, "question_number", *question.QuestionNumber)
	}

	eval := &models.InterviewEvaluation{
		InterviewID:    session.ID,
		QuestionNumber: *question.QuestionNumber,
		QuestionType:   questionType,
		Score:          parsed.Score,
		Feedback:       parsed.Feedback,
		Strengths:      parsed.Strengths,
		Improvements:   parsed.Improvements,
	}
	if err := s.evaluations.SaveEvaluationOnce(ctx, eval); err != nil {
		return nil, err
	}
	return eval, nil
}

func analyzeSkills(evaluations []models.InterviewEvaluation) map[string]SkillAnalysis {
	byType := make(map[models.QuestionType][]models.InterviewEvaluation)
	for _, eval := range evaluations {
		byType[eval.QuestionType] = append(byType[eval.QuestionType], eval)
	}

	skills := make(map[string]SkillAnalysis, len(byType))
	for questionType, evals := range byType {
		avg := meanScore(evals)
		skills[questionType.SkillName()] = SkillAnalysis{
			SkillName:      questionType.SkillName(),
			AverageScore:   avg,
			QuestionsCount: len(evals),
			Performance:    performanceLabel(avg),
			KeyPoints:      collectDistinct(evals, 3, strengthsOf),
		}
	}
	return skills
}

func buildRecommendations(skills map[string]SkillAnalysis, averageScore float64) []string {
	var recommendations []string

	switch {
	case averageScore >= 8.0:
		recommendations = append(recommendations,
			"Excellent work! You demonstrated a high level of preparation.",
			"Keep practicing to maintain your skills.")
	case averageScore >= 6.0:
		recommendations = append(recommendations,
			"Good results. There are areas for improvement.",
			"Focus on your weaker areas to raise your overall score.")
	default:
		recommendations = append(recommendations,
			"More practice is needed. Don't get discouraged!",
			"We recommend taking a few more interviews to improve your skills.")
	}

	for _, questionType := range []models.QuestionType{models.QuestionTypeBackground, models.QuestionTypeSituational, models.QuestionTypeTechnical} {
		analysis, ok := skills[questionType.SkillName()]
		if ok && analysis.AverageScore < 6.0 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Pay more attention to the skill: %s (current score: %.1f/10)",
				analysis.SkillName, analysis.AverageScore))
		}
	}

	return recommendations
}

func performanceLabel(score float64) string {
	switch {
	case score >= 8.0:
		return "Excellent"
	case score >= 6.0:
		return "Good"
	case score >= 4.0:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func meanScore(evaluations []models.InterviewEvaluation) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	sum := 0
	for _, eval := range evaluations {
		sum += eval.Score
	}
	return float64(sum) / float64(len(evaluations))
}

func strengthsOf(eval models.InterviewEvaluation) []string    { return eval.Strengths }
func improvementsOf(eval models.InterviewEvaluation) []string { return eval.Improvements }

// collectDistinct flattens the selected phrase lists, deduplicates keeping
// first-seen order, and returns at most limit entries.
func collectDistinct(evaluations []models.InterviewEvaluation, limit int, pick func(models.InterviewEvaluation) []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, eval := range evaluations {
		for _, phrase := range pick(eval) {
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			result = append(result, phrase)
			if len(result) == limit {
				return result
			}
		}
	}
	return result
}
