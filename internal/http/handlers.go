package http

import (
	"encoding/json"
	"net/http"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/health"
	"finsight/internal/services"
)

// generateReportRequest is the POST /api/reports body.
type generateReportRequest struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Period    string `json:"period"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Persist   bool   `json:"persist"`
	Options   struct {
		IncludeCharts             bool   `json:"includeCharts"`
		IncludeTransactionDetails bool   `json:"includeTransactionDetails"`
		Limit                     int    `json:"limit"`
		GoalID                    string `json:"goalId"`
		ProjectionMonths          int    `json:"projectionMonths"`
	} `json:"options"`
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	report, err := s.svc.GenerateReport(r.Context(), userID, services.GenerateRequest{
		Type:      req.Type,
		Name:      req.Name,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Persist:   req.Persist,
		Options: analytics.Options{
			IncludeCharts:             req.Options.IncludeCharts,
			IncludeTransactionDetails: req.Options.IncludeTransactionDetails,
			Limit:                     req.Options.Limit,
			GoalID:                    req.Options.GoalID,
			ProjectionMonths:          req.Options.ProjectionMonths,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if req.Persist {
		status = http.StatusCreated
	}
	writeJSON(w, status, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", s.recentLimit)
	reports, err := s.svc.RecentReports(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []core.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	report, err := s.svc.ReportByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.defaultPeriod
	}
	summary, err := s.svc.Dashboard(r.Context(), userID, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.defaultPeriod
	}
	set, err := s.svc.Insights(r.Context(), userID, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleBudgetHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	score, err := s.svc.BudgetHealth(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleBudgetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	recs, err := s.svc.BudgetRecommendations(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []health.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}
