// Package services orchestrates the analytics engine against the stores
// and the event bus: report generation and persistence, dashboard
// composition with caching, insight assembly, and budget health scoring.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	"finsight/internal/cache"
	"finsight/internal/core"
	"finsight/internal/dashboard"
	"finsight/internal/health"
	"finsight/internal/insights"
	"finsight/internal/log"
)

// ReportPublisher publishes report lifecycle events. Satisfied by the AMQP
// client; nil disables publishing.
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, reportID, userID, reportType string) error
}

// GenerateRequest describes one report generation call.
type GenerateRequest struct {
	Type      string
	Name      string
	Period    string
	StartDate string
	EndDate   string
	Options   analytics.Options
	// Persist materializes the result as a stored Report record.
	Persist bool
}

// ReportService exposes the engine to the transport layer.
type ReportService struct {
	engine    *analytics.Engine
	composer  *dashboard.Composer
	reports   analytics.ReportStore
	budgets   analytics.BudgetStore
	goals     analytics.GoalStore
	publisher ReportPublisher
	dashCache *cache.LRUCache[dashboard.Summary]
	logger    *log.Logger
	now       func() time.Time
}

func NewReportService(
	engine *analytics.Engine,
	composer *dashboard.Composer,
	reports analytics.ReportStore,
	budgets analytics.BudgetStore,
	goals analytics.GoalStore,
	publisher ReportPublisher,
	dashCache *cache.LRUCache[dashboard.Summary],
	logger *log.Logger,
) *ReportService {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ReportService{
		engine:    engine,
		composer:  composer,
		reports:   reports,
		budgets:   budgets,
		goals:     goals,
		publisher: publisher,
		dashCache: dashCache,
		logger:    logger.WithComponent(log.ComponentApp),
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// GenerateReport resolves the period, runs the requested generator, and
// optionally materializes the result. Persistence is fire-and-forget: a
// store or publish failure is logged and never fails the already-computed
// response.
func (s *ReportService) GenerateReport(ctx context.Context, userID string, req GenerateRequest) (core.Report, error) {
	reportType, err := core.ParseReportType(req.Type)
	if err != nil {
		return core.Report{}, err
	}
	window, err := analytics.ResolvePeriod(req.Period, req.StartDate, req.EndDate, s.now())
	if err != nil {
		return core.Report{}, err
	}

	data, meta, err := s.engine.Generate(ctx, userID, reportType, window, req.Options)
	if err != nil {
		return core.Report{}, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s report", reportType)
	}
	report := core.Report{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      reportType,
		Period:    analytics.NormalizePeriod(req.Period),
		StartDate: window.Start,
		EndDate:   window.End,
		Status:    core.ReportCompleted,
		Format:    "json",
		Data:      data,
		Metadata:  meta,
	}

	if req.Persist {
		s.persist(ctx, report)
	}
	if s.dashCache != nil && reportType == core.ReportBudgetPerformance {
		// Spent amounts changed; cached summaries for this user are stale.
		s.dashCache.InvalidatePrefix(userID + ":")
	}

	return report, nil
}

func (s *ReportService) persist(ctx context.Context, report core.Report) {
	if s.reports == nil {
		return
	}
	if _, err := s.reports.Create(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "Report persistence failed",
			log.FieldOperation, log.OpPersist,
			log.FieldReportID, report.ID,
			log.FieldError, err)
		return
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportGenerated(ctx, report.ID, report.UserID, string(report.Type)); err != nil {
		s.logger.ErrorContext(ctx, "Report event publish failed",
			log.FieldOperation, log.OpPublish,
			log.FieldReportID, report.ID,
			log.FieldError, err)
	}
}

// RecentReports lists the user's newest persisted reports.
func (s *ReportService) RecentReports(ctx context.Context, userID string, limit int) ([]core.Report, error) {
	return s.reports.FindRecent(ctx, userID, limit)
}

// ReportByID retrieves one persisted report, user-scoped.
func (s *ReportService) ReportByID(ctx context.Context, userID, reportID string) (core.Report, error) {
	return s.reports.FindByID(ctx, userID, reportID)
}

// Dashboard returns the composed summary for a period, cached per
// user and period.
func (s *ReportService) Dashboard(ctx context.Context, userID, period string) (dashboard.Summary, error) {
	key := userID + ":" + analytics.NormalizePeriod(period)
	if s.dashCache != nil {
		if summary, ok := s.dashCache.Get(key); ok {
			return summary, nil
		}
	}

	summary, err := s.composer.Compose(ctx, userID, period)
	if err != nil {
		return dashboard.Summary{}, err
	}
	if s.dashCache != nil {
		s.dashCache.Set(key, summary)
	}
	return summary, nil
}

// Insights generates the full insight set for a period. Generators run
// concurrently; a failed generator contributes no insights for its
// dimension rather than failing the set.
func (s *ReportService) Insights(ctx context.Context, userID, period string) (insights.InsightSet, error) {
	window, err := analytics.ResolvePeriod(period, "", "", s.now())
	if err != nil {
		return insights.InsightSet{}, err
	}

	var (
		wg      sync.WaitGroup
		reports insights.Reports
	)
	run := func(f func() error, dimension string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				s.logger.WarnContext(ctx, "Insight input unavailable",
					log.FieldUserID, userID,
					"dimension", dimension,
					log.FieldError, err)
			}
		}()
	}

	run(func() error {
		data, _, err := s.engine.SpendingReport(ctx, userID, window, analytics.Options{IncludeCharts: true})
		if err == nil {
			reports.Spending = &data
		}
		return err
	}, "spending")
	run(func() error {
		data, _, err := s.engine.IncomeReport(ctx, userID, window, analytics.Options{})
		if err == nil {
			reports.Income = &data
		}
		return err
	}, "income")
	run(func() error {
		data, _, err := s.engine.CashFlowReport(ctx, userID, window, analytics.Options{})
		if err == nil {
			reports.CashFlow = &data
		}
		return err
	}, "savings")
	run(func() error {
		data, _, err := s.engine.BudgetPerformanceReport(ctx, userID, window, analytics.Options{})
		if err == nil {
			reports.Budget = &data
		}
		return err
	}, "budget")
	run(func() error {
		data, _, err := s.engine.GoalProgressReport(ctx, userID, window, analytics.Options{})
		if err == nil {
			reports.Goals = &data
		}
		return err
	}, "goals")
	wg.Wait()

	return insights.Generate(reports), nil
}

// BudgetHealth recomputes a budget's spend and scores its health together
// with the user's savings rate, goal progress, and emergency fund cover.
func (s *ReportService) BudgetHealth(ctx context.Context, userID, budgetID string) (health.HealthScore, error) {
	input, err := s.healthInput(ctx, userID, budgetID)
	if err != nil {
		return health.HealthScore{}, err
	}
	return health.Score(input), nil
}

// BudgetRecommendations returns ranked optimization suggestions for a
// budget, using the user's earlier budgets as utilization history.
func (s *ReportService) BudgetRecommendations(ctx context.Context, userID, budgetID string) ([]health.Recommendation, error) {
	budget, err := s.budgets.FindByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	budget, err = s.engine.RecomputeBudget(ctx, userID, budget)
	if err != nil {
		return nil, err
	}

	history, err := s.budgets.Find(ctx, userID, analytics.BudgetFilter{
		ActiveWithin: core.DateWindow{End: budget.StartDate},
	})
	if err != nil {
		return nil, err
	}
	// The current budget can match its own start boundary.
	filtered := history[:0]
	for _, b := range history {
		if b.ID != budget.ID {
			filtered = append(filtered, b)
		}
	}

	return health.Recommend(budget, filtered, s.now()), nil
}

func (s *ReportService) healthInput(ctx context.Context, userID, budgetID string) (health.Input, error) {
	budget, err := s.budgets.FindByID(ctx, userID, budgetID)
	if err != nil {
		return health.Input{}, err
	}
	budget, err = s.engine.RecomputeBudget(ctx, userID, budget)
	if err != nil {
		return health.Input{}, err
	}

	window := core.DateWindow{Start: budget.StartDate, End: budget.EndDate.AddDate(0, 0, 1)}
	cashFlow, _, err := s.engine.CashFlowReport(ctx, userID, window, analytics.Options{})
	if err != nil {
		return health.Input{}, err
	}
	goalReport, _, err := s.engine.GoalProgressReport(ctx, userID, window, analytics.Options{})
	if err != nil {
		return health.Input{}, err
	}

	goals, err := s.goals.Find(ctx, userID, analytics.GoalFilter{})
	if err != nil {
		return health.Input{}, err
	}
	savings := decimal.Zero
	for _, g := range goals {
		savings = savings.Add(g.CurrentAmount)
	}

	months := 0.0
	if n := len(cashFlow.Monthly); n > 0 && cashFlow.Summary.TotalExpenses > 0 {
		avgMonthlyExpenses := cashFlow.Summary.TotalExpenses / float64(n)
		if avgMonthlyExpenses > 0 {
			months = savings.InexactFloat64() / avgMonthlyExpenses
		}
	}

	return health.Input{
		Budget:              budget,
		SavingsRate:         cashFlow.Summary.AverageSavingsRate,
		AverageGoalProgress: goalReport.Summary.AverageProgress,
		EmergencyFundMonths: months,
		Now:                 s.now(),
	}, nil
}
