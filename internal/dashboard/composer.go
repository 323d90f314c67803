// Package dashboard composes a fixed-shape summary payload from the report
// generators for UI consumption.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/log"
)

// topCategoryCount is how many expense categories the summary surfaces.
const topCategoryCount = 3

// Summary is the composed dashboard payload.
type Summary struct {
	Period               string                       `json:"period"`
	MonthlyIncome        float64                      `json:"monthlyIncome"`
	MonthlyExpenses      float64                      `json:"monthlyExpenses"`
	NetWorth             float64                      `json:"netWorth"`
	SavingsRate          float64                      `json:"savingsRate"`
	BudgetUtilization    float64                      `json:"budgetUtilization"`
	GoalProgress         float64                      `json:"goalProgress"`
	TopExpenseCategories []analytics.CategoryAnalysis `json:"topExpenseCategories"`
	RecentTrends         []analytics.TrendPoint       `json:"recentTrends"`
}

// Composer fans a dashboard request out to the report generators.
type Composer struct {
	engine *analytics.Engine
	logger *log.Logger
	now    func() time.Time
}

func NewComposer(engine *analytics.Engine, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Composer{
		engine: engine,
		logger: logger.WithComponent(log.ComponentDashboard),
		now:    time.Now,
	}
}

// WithClock overrides the composer clock. Used in tests.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// Compose resolves the period once and runs the six generators concurrently
// against the same window. Failure of any generator fails the whole
// composition: a partial dashboard would silently mix inconsistent period
// data.
func (c *Composer) Compose(ctx context.Context, userID, periodToken string) (Summary, error) {
	if strings.TrimSpace(userID) == "" {
		return Summary{}, core.NewValidationError("userId", "required")
	}

	window, err := analytics.ResolvePeriod(periodToken, "", "", c.now())
	if err != nil {
		return Summary{}, err
	}
	period := analytics.NormalizePeriod(periodToken)

	var (
		spending analytics.SpendingData
		income   analytics.IncomeData
		cashFlow analytics.CashFlowData
		budget   analytics.BudgetPerformanceData
		goals    analytics.GoalProgressData
		netWorth analytics.NetWorthData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spending, _, err = c.engine.SpendingReport(gctx, userID, window, analytics.Options{
			Limit:         5,
			IncludeCharts: true,
		})
		return err
	})
	g.Go(func() error {
		var err error
		income, _, err = c.engine.IncomeReport(gctx, userID, window, analytics.Options{})
		return err
	})
	g.Go(func() error {
		var err error
		cashFlow, _, err = c.engine.CashFlowReport(gctx, userID, window, analytics.Options{})
		return err
	})
	g.Go(func() error {
		var err error
		budget, _, err = c.engine.BudgetPerformanceReport(gctx, userID, window, analytics.Options{})
		return err
	})
	g.Go(func() error {
		var err error
		goals, _, err = c.engine.GoalProgressReport(gctx, userID, window, analytics.Options{})
		return err
	})
	g.Go(func() error {
		var err error
		netWorth, _, err = c.engine.NetWorthReport(gctx, userID, window, analytics.Options{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("compose dashboard: %w", err)
	}

	summary := Summary{
		Period:            period,
		MonthlyIncome:     income.Summary.TotalIncome,
		MonthlyExpenses:   spending.Summary.TotalSpending,
		NetWorth:          netWorth.Current.NetWorth,
		SavingsRate:       cashFlow.Summary.AverageSavingsRate,
		BudgetUtilization: budget.Summary.OverallPerformancePercentage,
		GoalProgress:      goals.Summary.AverageProgress,
		RecentTrends:      spending.Trends,
	}
	if len(spending.CategoryAnalysis) > topCategoryCount {
		summary.TopExpenseCategories = spending.CategoryAnalysis[:topCategoryCount]
	} else {
		summary.TopExpenseCategories = spending.CategoryAnalysis
	}

	c.logger.InfoContext(ctx, "Dashboard composed",
		log.FieldUserID, userID,
		log.FieldPeriod, period)

	return summary, nil
}
