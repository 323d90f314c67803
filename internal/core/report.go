package core

import (
	"strings"
	"time"
)

const (
	ReportSpending          ReportType = "spending"
	ReportIncome            ReportType = "income"
	ReportCashFlow          ReportType = "cashflow"
	ReportBudgetPerformance ReportType = "budget_performance"
	ReportGoalProgress      ReportType = "goal_progress"
	ReportNetWorth          ReportType = "net_worth"
)

const (
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

type (
	ReportType   string
	ReportStatus string

	// ReportMetadata captures how a report run went, for display and audit.
	ReportMetadata struct {
		TotalRecords     int      `json:"totalRecords"`
		GenerationTimeMs int64    `json:"generationTimeMs"`
		Categories       []string `json:"categories,omitempty"`
		Accounts         []string `json:"accounts,omitempty"`
	}

	// Report is the one record this engine owns. It is immutable once
	// Status is "completed"; re-generation always creates a new record.
	Report struct {
		ID        string         `json:"id"`
		UserID    string         `json:"userId"`
		Name      string         `json:"name"`
		Type      ReportType     `json:"type"`
		Period    string         `json:"period"`
		StartDate time.Time      `json:"startDate"`
		EndDate   time.Time      `json:"endDate"`
		Status    ReportStatus   `json:"status"`
		Format    string         `json:"format"`
		Data      any            `json:"data"`
		Metadata  ReportMetadata `json:"metadata"`
		CreatedAt time.Time      `json:"createdAt"`
		UpdatedAt time.Time      `json:"updatedAt"`
	}
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportSpending, ReportIncome, ReportCashFlow,
		ReportBudgetPerformance, ReportGoalProgress, ReportNetWorth:
		return true
	}
	return false
}

// ParseReportType normalizes and validates a report type token.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "cash_flow", "cash-flow":
		t = ReportCashFlow
	case "networth", "net-worth":
		t = ReportNetWorth
	}
	if !t.Valid() {
		return "", NewValidationError("type", "unknown report type "+string(s))
	}
	return t, nil
}

func (r Report) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyReportID
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if !r.Type.Valid() {
		return NewValidationError("type", "unknown report type "+string(r.Type))
	}
	return nil
}
