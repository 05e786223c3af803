package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
)

const (
	progressWindowSize  = 5
	recentInterviewsMax = 10
)

// ProgressService computes cross-interview analytics for a user from their
// completed sessions and stored evaluations. Everything here is derived on
// read; nothing is persisted.
type ProgressService struct {
	store       repository.InterviewStore
	evaluations repository.EvaluationStore
}

func NewProgressService(store repository.InterviewStore, evaluations repository.EvaluationStore) *ProgressService {
	return &ProgressService{
		store:       store,
		evaluations: evaluations,
	}
}

// SkillProgress compares a skill's recent interviews against the earliest
// ones.
type SkillProgress struct {
	SkillName     string  `json:"skill_name"`
	CurrentScore  float64 `json:"current_score"`
	PreviousScore float64 `json:"previous_score"`
	Improvement   float64 `json:"improvement"`
	Trend         string  `json:"trend"`
}

type InterviewSummary struct {
	InterviewID string                 `json:"interview_id"`
	Position    string                 `json:"position"`
	Date        time.Time              `json:"date"`
	Score       float64                `json:"score"`
	Status      models.InterviewStatus `json:"status"`
}

type ProgressAnalytics struct {
	TotalInterviews  int                      `json:"total_interviews"`
	AverageScore     float64                  `json:"average_score"`
	ScoreImprovement float64                  `json:"score_improvement"`
	SkillsProgress   map[string]SkillProgress `json:"skills_progress"`
	RecentInterviews []InterviewSummary       `json:"recent_interviews"`
}

// GetProgressAnalytics aggregates all of the user's completed interviews.
// Improvement compares the mean score of the earliest five sessions against
// the latest five; with fewer than ten sessions the windows overlap, which
// is accepted.
func (s *ProgressService) GetProgressAnalytics(ctx context.Context, user *models.User) (*ProgressAnalytics, error) {
	sessions, err := s.store.GetCompletedInterviewSessions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed interviews: %w", err)
	}

	if len(sessions) == 0 {
		return &ProgressAnalytics{
			SkillsProgress:   map[string]SkillProgress{},
			RecentInterviews: []InterviewSummary{},
		}, nil
	}

	sessionIDs := make([]string, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	evaluations, err := s.evaluations.GetEvaluationsByInterviews(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluations: %w", err)
	}

	slog.Info("Computing progress analytics", "user_id", user.ID, "interviews", len(sessions), "evaluations", len(evaluations))

	firstWindow, lastWindow := windowIDs(sessions)

	return &ProgressAnalytics{
		TotalInterviews:  len(sessions),
		AverageScore:     meanScore(evaluations),
		ScoreImprovement: scoreImprovement(sessions, evaluations, firstWindow, lastWindow),
		SkillsProgress:   skillsProgress(evaluations, firstWindow, lastWindow),
		RecentInterviews: recentInterviews(sessions, evaluations),
	}, nil
}

// GetSkillsAnalytics summarizes the user's strongest skill across all
// completed interviews, or an overall placeholder when nothing has been
// evaluated yet.
func (s *ProgressService) GetSkillsAnalytics(ctx context.Context, user *models.User) (*SkillAnalysis, error) {
	analytics, err := s.GetProgressAnalytics(ctx, user)
	if err != nil {
		return nil, err
	}

	var best *SkillProgress
	for name := range analytics.SkillsProgress {
		skill := analytics.SkillsProgress[name]
		if best == nil || skill.CurrentScore > best.CurrentScore {
			best = &skill
		}
	}

	if best == nil {
		return &SkillAnalysis{
			SkillName:    "Overall",
			AverageScore: analytics.AverageScore,
			Performance:  performanceLabel(analytics.AverageScore),
			KeyPoints:    []string{"Start your first interview"},
		}, nil
	}

	return &SkillAnalysis{
		SkillName:      best.SkillName,
		AverageScore:   best.CurrentScore,
		QuestionsCount: s.countSkillEvaluations(ctx, user, best.SkillName),
		Performance:    performanceLabel(best.CurrentScore),
		KeyPoints:      []string{"Keep practicing", "Good progress"},
	}, nil
}

func (s *ProgressService) countSkillEvaluations(ctx context.Context, user *models.User, skillName string) int {
	sessions, err := s.store.GetCompletedInterviewSessions(ctx, user.ID)
	if err != nil {
		return 0
	}
	sessionIDs := make([]string, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}
	evaluations, err := s.evaluations.GetEvaluationsByInterviews(ctx, sessionIDs)
	if err != nil {
		return 0
	}

	count := 0
	for _, eval := range evaluations {
		if eval.QuestionType.SkillName() == skillName {
			count++
		}
	}
	return count
}

// windowIDs returns the session IDs of the earliest and latest
// progressWindowSize sessions. Sessions arrive sorted by creation time
// ascending.
func windowIDs(sessions []models.InterviewSession) (first, last map[string]bool) {
	first = make(map[string]bool)
	last = make(map[string]bool)
	for i, session := range sessions {
		if i < progressWindowSize {
			first[session.ID] = true
		}
		if i >= len(sessions)-progressWindowSize {
			last[session.ID] = true
		}
	}
	return first, last
}

func scoreImprovement(sessions []models.InterviewSession, evaluations []models.InterviewEvaluation, firstWindow, lastWindow map[string]bool) float64 {
	if len(sessions) < 2 {
		return 0
	}

	firstAvg := windowMean(evaluations, firstWindow, "")
	lastAvg := windowMean(evaluations, lastWindow, "")

	if firstAvg == 0 {
		return 0
	}
	return (lastAvg - firstAvg) / firstAvg * 100.0
}

func skillsProgress(evaluations []models.InterviewEvaluation, firstWindow, lastWindow map[string]bool) map[string]SkillProgress {
	progress := make(map[string]SkillProgress)

	for _, questionType := range []models.QuestionType{models.QuestionTypeBackground, models.QuestionTypeSituational, models.QuestionTypeTechnical} {
		hasAny := false
		for _, eval := range evaluations {
			if eval.QuestionType == questionType {
				hasAny = true
				break
			}
		}
		if !hasAny {
			continue
		}

		current := windowMean(evaluations, lastWindow, questionType)
		previous := windowMean(evaluations, firstWindow, questionType)
		improvement := current - previous

		progress[questionType.SkillName()] = SkillProgress{
			SkillName:     questionType.SkillName(),
			CurrentScore:  current,
			PreviousScore: previous,
			Improvement:   improvement,
			Trend:         trendLabel(improvement),
		}
	}

	return progress
}

// windowMean averages the scores of evaluations belonging to the given
// session window, optionally restricted to one question type.
func windowMean(evaluations []models.InterviewEvaluation, window map[string]bool, questionType models.QuestionType) float64 {
	sum, count := 0, 0
	for _, eval := range evaluations {
		if !window[eval.InterviewID] {
			continue
		}
		if questionType != "" && eval.QuestionType != questionType {
			continue
		}
		sum += eval.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func recentInterviews(sessions []models.InterviewSession, evaluations []models.InterviewEvaluation) []InterviewSummary {
	scoresByID := make(map[string][]models.InterviewEvaluation)
	for _, eval := range evaluations {
		scoresByID[eval.InterviewID] = append(scoresByID[eval.InterviewID], eval)
	}

	summaries := make([]InterviewSummary, 0, recentInterviewsMax)
	for i := len(sessions) - 1; i >= 0 && len(summaries) < recentInterviewsMax; i-- {
		session := sessions[i]
		summaries = append(summaries, InterviewSummary{
			InterviewID: session.ID,
			Position:    session.Position,
			Date:        session.CreatedAt,
			Score:       meanScore(scoresByID[session.ID]),
			Status:      session.Status,
		})
	}
	return summaries
}

func trendLabel(improvement float64) string {
	switch {
	case improvement > 0.5:
		return "Improving"
	case improvement < -0.5:
		return "Declining"
	default:
		return "Stable"
	}
}
