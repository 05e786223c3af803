package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders interview data into downloadable formats: an XLSX
// workbook for a single report and CSV for the interview history.
type ExportService struct {
	store       repository.InterviewStore
	evaluations repository.EvaluationStore
}

func NewExportService(store repository.InterviewStore, evaluations repository.EvaluationStore) *ExportService {
	return &ExportService{
		store:       store,
		evaluations: evaluations,
	}
}

// WriteReportXLSX writes the report as a workbook with a summary sheet, a
// per-skill sheet and the full list of question evaluations.
func (s *ExportService) WriteReportXLSX(w io.Writer, report *InterviewReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Interview ID", report.InterviewID},
		{"Overall Score", report.OverallScore},
		{"Questions Evaluated", report.TotalQuestions},
		{"Strengths", strings.Join(report.Strengths, "; ")},
		{"Weaknesses", strings.Join(report.Weaknesses, "; ")},
		{"Recommendations", strings.Join(report.Recommendations, "; ")},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	const skillsSheet = "Skills"
	if _, err := f.NewSheet(skillsSheet); err != nil {
		return fmt.Errorf("failed to create skills sheet: %w", err)
	}
	skillsHeader := []interface{}{"Skill", "Average Score", "Questions", "Performance", "Key Points"}
	if err := f.SetSheetRow(skillsSheet, "A1", &skillsHeader); err != nil {
		return err
	}
	row := 2
	for _, questionType := range []models.QuestionType{models.QuestionTypeBackground, models.QuestionTypeSituational, models.QuestionTypeTechnical} {
		analysis, ok := report.SkillsAnalysis[questionType.SkillName()]
		if !ok {
			continue
		}
		values := []interface{}{
			analysis.SkillName,
			analysis.AverageScore,
			analysis.QuestionsCount,
			analysis.Performance,
			strings.Join(analysis.KeyPoints, "; "),
		}
		if err := f.SetSheetRow(skillsSheet, "A"+strconv.Itoa(row), &values); err != nil {
			return err
		}
		row++
	}

	const evaluationsSheet = "Evaluations"
	if _, err := f.NewSheet(evaluationsSheet); err != nil {
		return fmt.Errorf("failed to create evaluations sheet: %w", err)
	}
	evalHeader := []interface{}{"Question", "Type", "Score", "Feedback", "Strengths", "Improvements"}
	if err := f.SetSheetRow(evaluationsSheet, "A1", &evalHeader); err != nil {
		return err
	}
	for i, eval := range report.QuestionEvaluations {
		values := []interface{}{
			eval.QuestionNumber,
			string(eval.QuestionType),
			eval.Score,
			eval.Feedback,
			strings.Join(eval.Strengths, "; "),
			strings.Join(eval.Improvements, "; "),
		}
		if err := f.SetSheetRow(evaluationsSheet, "A"+strconv.Itoa(i+2), &values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteHistoryCSV writes one row per session of the user's history. The
// per-interview score column is the mean of stored evaluations; interviews
// that were never scored show 0.
func (s *ExportService) WriteHistoryCSV(ctx context.Context, w io.Writer, user *models.User) error {
	sessions, err := s.store.GetInterviewSessions(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load interview history: %w", err)
	}

	sessionIDs := make([]string, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}
	evaluations, err := s.evaluations.GetEvaluationsByInterviews(ctx, sessionIDs)
	if err != nil {
		return fmt.Errorf("failed to load evaluations: %w", err)
	}
	byInterview := make(map[string][]models.InterviewEvaluation)
	for _, eval := range evaluations {
		byInterview[eval.InterviewID] = append(byInterview[eval.InterviewID], eval)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Interview ID", "Position", "Company", "Date", "Status", "Overall Score", "Questions Answered"}); err != nil {
		return err
	}

	for _, session := range sessions {
		record := []string{
			session.ID,
			session.Position,
			session.Company,
			session.CreatedAt.Format(time.RFC3339),
			string(session.Status),
			strconv.FormatFloat(meanScore(byInterview[session.ID]), 'f', 2, 64),
			strconv.Itoa(session.CurrentQuestionNumber),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	slog.Info("History export completed", "user_id", user.ID, "interviews", len(sessions))
	return nil
}
