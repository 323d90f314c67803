package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"finsight/internal/core"
	"finsight/internal/log"
)

// Options tune a single report generation run.
type Options struct {
	// IncludeCharts gates the time-series trend arrays.
	IncludeCharts bool
	// IncludeTransactionDetails gates per-transaction detail arrays.
	IncludeTransactionDetails bool
	// Limit caps category breakdown rows. Zero means no cap.
	Limit int
	// GoalID restricts the goal-progress report to a single goal.
	GoalID string
	// ProjectionMonths extends the net-worth report with a linear projection.
	ProjectionMonths int
}

// Engine generates reports from the collaborator stores. All generators are
// side-effect free except budget performance, which recomputes and persists
// per-allocation spent amounts.
type Engine struct {
	transactions TransactionStore
	budgets      BudgetStore
	goals        GoalStore
	categories   CategoryStore
	logger       *log.Logger
	now          func() time.Time
}

func NewEngine(
	transactions TransactionStore,
	budgets BudgetStore,
	goals GoalStore,
	categories CategoryStore,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{
		transactions: transactions,
		budgets:      budgets,
		goals:        goals,
		categories:   categories,
		logger:       logger.WithComponent(log.ComponentAnalytics),
		now:          time.Now,
	}
}

// WithClock overrides the engine clock. Used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Generate runs a single report generator and returns its payload together
// with run metadata. Generators fail fast and never partially populate a
// report.
func (e *Engine) Generate(ctx context.Context, userID string, reportType core.ReportType, window core.DateWindow, opts Options) (any, core.ReportMetadata, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ReportMetadata{}, core.NewValidationError("userId", "required")
	}

	started := e.now()
	var (
		data any
		meta core.ReportMetadata
		err  error
	)

	switch reportType {
	case core.ReportSpending:
		data, meta, err = e.SpendingReport(ctx, userID, window, opts)
	case core.ReportIncome:
		data, meta, err = e.IncomeReport(ctx, userID, window, opts)
	case core.ReportCashFlow:
		data, meta, err = e.CashFlowReport(ctx, userID, window, opts)
	case core.ReportBudgetPerformance:
		data, meta, err = e.BudgetPerformanceReport(ctx, userID, window, opts)
	case core.ReportGoalProgress:
		data, meta, err = e.GoalProgressReport(ctx, userID, window, opts)
	case core.ReportNetWorth:
		data, meta, err = e.NetWorthReport(ctx, userID, window, opts)
	default:
		return nil, core.ReportMetadata{}, core.NewValidationError("type", "unknown report type "+string(reportType))
	}
	if err != nil {
		return nil, core.ReportMetadata{}, fmt.Errorf("generate %s report: %w", reportType, err)
	}

	meta.GenerationTimeMs = e.now().Sub(started).Milliseconds()
	e.logger.InfoContext(ctx, "Report generated",
		log.FieldUserID, userID,
		log.FieldReportType, string(reportType),
		log.FieldRecords, meta.TotalRecords,
		log.FieldDuration, meta.GenerationTimeMs)

	return data, meta, nil
}

// categoryLabel resolves a category id to display attributes, falling back
// to a stable label when the category is unknown or the store is absent.
func (e *Engine) categoryLabel(ctx context.Context, categoryID string) (name, color string) {
	if categoryID == "" || e.categories == nil {
		return "Uncategorized", ""
	}
	cat, err := e.categories.FindByID(ctx, categoryID)
	if err != nil {
		return "Uncategorized", ""
	}
	return cat.Name, cat.Color
}

// monthKey buckets a timestamp into its calendar month.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// sortedMonthKeys returns bucket keys in chronological order.
func sortedMonthKeys[V any](buckets map[string]V) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// round2 rounds to two decimal places, the precision every percentage and
// monetary field in a report payload carries.
func round2(f float64) float64 {
	return float64(int64(f*100+sign(f)*0.5)) / 100
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
