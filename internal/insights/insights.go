// Package insights turns already-computed report payloads into categorized
// textual insights via a fixed rule table. It is a pure function of its
// input: no store access, and it never fails. Missing or incomplete report
// fields simply produce no insight for that dimension.
package insights

import (
	"fmt"

	"finsight/internal/analytics"
)

// Insight categories.
const (
	TypePositive = "positive"
	TypeWarning  = "warning"
	TypeInfo     = "info"
)

// Rule thresholds. These are compile-time constants, not configuration:
// downstream consumers depend on the exact boundary behavior (a 20.0%
// spending change does not trigger the >20 rule; 20.01% does).
const (
	spendingIncreaseThreshold  = 20.0
	spendingDecreaseThreshold  = -10.0
	concentrationThreshold     = 40.0
	incomeGrowthThreshold      = 10.0
	diversificationThreshold   = 0.3
	savingsRateLowThreshold    = 10.0
	savingsRateStrongThreshold = 20.0
	budgetPerformanceThreshold = 85.0
	goalRiskDays               = 90
	goalRiskProgress           = 75.0
	goalReachProgress          = 90.0
)

// Insight is one categorized observation. Ephemeral: computed per request,
// never persisted.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Reports bundles the generator outputs the rules inspect. Nil members are
// skipped.
type Reports struct {
	Spending *analytics.SpendingData
	Income   *analytics.IncomeData
	CashFlow *analytics.CashFlowData
	Budget   *analytics.BudgetPerformanceData
	Goals    *analytics.GoalProgressData
}

// InsightSet groups insights by dimension.
type InsightSet struct {
	Spending []Insight `json:"spending"`
	Income   []Insight `json:"income"`
	Savings  []Insight `json:"savings"`
	Budget   []Insight `json:"budget"`
	Goals    []Insight `json:"goals"`
}

// Generate runs the rule table over the given reports.
func Generate(reports Reports) InsightSet {
	return InsightSet{
		Spending: spendingInsights(reports.Spending),
		Income:   incomeInsights(reports.Income),
		Savings:  savingsInsights(reports.CashFlow),
		Budget:   budgetInsights(reports.Budget),
		Goals:    goalInsights(reports.Goals),
	}
}

func spendingInsights(data *analytics.SpendingData) []Insight {
	if data == nil {
		return nil
	}
	var out []Insight

	if change, ok := trendChangePercent(data.Trends); ok {
		if change > spendingIncreaseThreshold {
			out = append(out, Insight{
				Type:    TypeWarning,
				Title:   "Spending Increase Alert",
				Message: fmt.Sprintf("Spending is up %.1f%% compared to the previous period.", change),
				Action:  "Review recent transactions for unplanned expenses.",
			})
		} else if change < spendingDecreaseThreshold {
			out = append(out, Insight{
				Type:    TypePositive,
				Title:   "Great Spending Control",
				Message: fmt.Sprintf("Spending is down %.1f%% compared to the previous period.", -change),
			})
		}
	}

	if len(data.CategoryAnalysis) > 0 {
		top := data.CategoryAnalysis[0]
		if top.Percentage > concentrationThreshold {
			out = append(out, Insight{
				Type:    TypeInfo,
				Title:   "Category Concentration",
				Message: fmt.Sprintf("%s accounts for %.1f%% of total spending.", top.CategoryName, top.Percentage),
				Action:  "Check whether this concentration is intentional.",
			})
		}
	}

	return out
}

func incomeInsights(data *analytics.IncomeData) []Insight {
	if data == nil {
		return nil
	}
	var out []Insight

	if data.Analysis.GrowthRate > incomeGrowthThreshold {
		out = append(out, Insight{
			Type:    TypePositive,
			Title:   "Income Growth",
			Message: fmt.Sprintf("Income grew %.1f%% over the previous period.", data.Analysis.GrowthRate),
		})
	}
	if len(data.SourceAnalysis) > 0 && data.Analysis.DiversificationScore < diversificationThreshold {
		out = append(out, Insight{
			Type:    TypeWarning,
			Title:   "Income Concentration Risk",
			Message: "Most income comes from a single source.",
			Action:  "Consider building additional income streams.",
		})
	}

	return out
}

func savingsInsights(data *analytics.CashFlowData) []Insight {
	if data == nil || len(data.Monthly) == 0 {
		return nil
	}
	rate := data.Summary.AverageSavingsRate
	switch {
	case rate < savingsRateLowThreshold:
		return []Insight{{
			Type:    TypeWarning,
			Title:   "Low Savings Rate",
			Message: fmt.Sprintf("Average savings rate is %.1f%%, below the recommended 10%%.", rate),
			Action:  "Look for recurring expenses to trim.",
		}}
	case rate >= savingsRateStrongThreshold:
		return []Insight{{
			Type:    TypePositive,
			Title:   "Strong Savings Rate",
			Message: fmt.Sprintf("Average savings rate is %.1f%%.", rate),
		}}
	default:
		return nil
	}
}

func budgetInsights(data *analytics.BudgetPerformanceData) []Insight {
	if data == nil {
		return nil
	}
	var out []Insight

	if data.Summary.CategoriesOverBudget > 0 {
		out = append(out, Insight{
			Type:    TypeWarning,
			Title:   "Budget Overruns",
			Message: fmt.Sprintf("%d categories are over budget.", data.Summary.CategoriesOverBudget),
			Action:  "Rebalance allocations or reduce spending in those categories.",
		})
	}
	if data.Summary.OverallPerformancePercentage > budgetPerformanceThreshold {
		out = append(out, Insight{
			Type:    TypePositive,
			Title:   "Strong Budget Performance",
			Message: fmt.Sprintf("Overall budget utilization is %.1f%%.", data.Summary.OverallPerformancePercentage),
		})
	}

	return out
}

func goalInsights(data *analytics.GoalProgressData) []Insight {
	if data == nil {
		return nil
	}
	var atRisk, withinReach int
	for _, goal := range data.Goals {
		if goal.DaysRemaining < goalRiskDays && goal.Progress < goalRiskProgress {
			atRisk++
		}
		if goal.Progress >= goalReachProgress && goal.DaysRemaining > 0 {
			withinReach++
		}
	}

	var out []Insight
	if atRisk > 0 {
		out = append(out, Insight{
			Type:    TypeWarning,
			Title:   "Goals at Risk",
			Message: fmt.Sprintf("%d goals are under 75%% complete with less than 90 days left.", atRisk),
			Action:  "Increase contributions or adjust target dates.",
		})
	}
	if withinReach > 0 {
		out = append(out, Insight{
			Type:    TypePositive,
			Title:   "Goals Within Reach",
			Message: fmt.Sprintf("%d goals are at 90%% or more of their target.", withinReach),
		})
	}
	return out
}

// trendChangePercent compares the last trend bucket against the one before
// it. Returns false when fewer than two buckets exist or the prior bucket
// is zero.
func trendChangePercent(trends []analytics.TrendPoint) (float64, bool) {
	if len(trends) < 2 {
		return 0, false
	}
	prior := trends[len(trends)-2].Amount
	latest := trends[len(trends)-1].Amount
	if prior == 0 {
		return 0, false
	}
	return (latest - prior) / prior * 100, true
}
