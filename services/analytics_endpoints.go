package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AnalyticsEndpoints struct {
	analyticsService *AnalyticsService
	progressService  *ProgressService
	exportService    *ExportService
}

func NewAnalyticsEndpoints(analyticsService *AnalyticsService, progressService *ProgressService, exportService *ExportService) *AnalyticsEndpoints {
	return &AnalyticsEndpoints{
		analyticsService: analyticsService,
		progressService:  progressService,
		exportService:    exportService,
	}
}

func (e *AnalyticsEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/interviews/{id}/report", e.GetReportHandler)
		r.Get("/interviews/{id}/report/export", e.ExportReportHandler)
		r.Get("/progress", e.GetProgressHandler)
		r.Get("/skills", e.GetSkillsHandler)
		r.Get("/history/export", e.ExportHistoryHandler)
	})
}

func (e *AnalyticsEndpoints) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	interviewID := chi.URLParam(r, "id")

	report, err := e.analyticsService.GenerateInterviewReport(r.Context(), user, interviewID)
	if err != nil {
		slog.Error("Failed to generate report", "error", err, "interview_id", interviewID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (e *AnalyticsEndpoints) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	analytics, err := e.progressService.GetProgressAnalytics(r.Context(), user)
	if err != nil {
		slog.Error("Failed to compute progress analytics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to compute progress analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}

// GetSkillsHandler returns the user's strongest skill summary.
func (e *AnalyticsEndpoints) GetSkillsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	analysis, err := e.progressService.GetSkillsAnalytics(r.Context(), user)
	if err != nil {
		slog.Error("Failed to compute skills analytics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to compute skills analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}

// ExportReportHandler streams the interview report as an XLSX workbook.
func (e *AnalyticsEndpoints) ExportReportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	interviewID := chi.URLParam(r, "id")

	report, err := e.analyticsService.GenerateInterviewReport(r.Context(), user, interviewID)
	if err != nil {
		slog.Error("Failed to generate report for export", "error", err, "interview_id", interviewID)
		writeInterviewError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="interview_report.xlsx"`)
	if err := e.exportService.WriteReportXLSX(w, report); err != nil {
		slog.Error("Failed to write report export", "error", err, "interview_id", interviewID)
	}
}

// ExportHistoryHandler streams the user's interview history as CSV.
func (e *AnalyticsEndpoints) ExportHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="interview_history.csv"`)
	if err := e.exportService.WriteHistoryCSV(r.Context(), w, user); err != nil {
		slog.Error("Failed to write history export", "error", err, "user_id", user.ID)
	}
}
