package health

import (
	"fmt"
	"sort"
	"time"

	"finsight/internal/core"
)

// Recommendation types.
const (
	RecOverspending     = "overspending"
	RecBurnRate         = "burn_rate"
	RecCategoryOverrun  = "category_overspend"
	RecUnderutilization = "underutilization"
)

// Priorities, ordered for ranking.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// underutilizedThreshold is the utilization fraction below which a category
// counts as underused.
const underutilizedThreshold = 0.5

// Recommendation is one actionable suggestion. Metadata carries the numeric
// basis so results stay explainable and testable.
type Recommendation struct {
	Type             string             `json:"type"`
	Priority         string             `json:"priority"`
	Impact           string             `json:"impact"`
	Message          string             `json:"message"`
	CategoryID       string             `json:"categoryId,omitempty"`
	PotentialSavings float64            `json:"potentialSavings,omitempty"`
	Metadata         map[string]float64 `json:"metadata,omitempty"`
}

// Recommend derives ranked optimization suggestions for a budget from its
// burn-rate metrics and per-category utilization. history holds the same
// user's budgets for prior periods and feeds the persistent-underutilization
// rule; it may be empty.
func Recommend(budget core.Budget, history []core.Budget, now time.Time) []Recommendation {
	metrics := ComputeMetrics(budget, now)
	var recs []Recommendation

	if metrics.UtilizationRate > 1.0 {
		overspend := metrics.TotalSpent - metrics.TotalBudget
		recs = append(recs, Recommendation{
			Type:             RecOverspending,
			Priority:         PriorityHigh,
			Impact:           "reduce_spending",
			Message:          fmt.Sprintf("Spending has exceeded the budget by %.2f.", overspend),
			PotentialSavings: overspend,
			Metadata: map[string]float64{
				"utilizationRate": metrics.UtilizationRate,
				"totalSpent":      metrics.TotalSpent,
				"totalBudget":     metrics.TotalBudget,
			},
		})
	}

	if metrics.BurnRateVariance > 0 && metrics.ProjectedOverrun > 0 {
		recs = append(recs, Recommendation{
			Type:     RecBurnRate,
			Priority: PriorityMedium,
			Impact:   "slow_burn_rate",
			Message:  fmt.Sprintf("At the current daily rate the period ends %.2f over budget.", metrics.ProjectedOverrun),
			Metadata: map[string]float64{
				"dailySpendingRate": metrics.DailySpendingRate,
				"idealBurnRate":     metrics.IdealBurnRate,
				"projectedOverrun":  metrics.ProjectedOverrun,
			},
		})
	}

	for _, alloc := range budget.Allocations {
		if !alloc.AllocatedAmount.IsPositive() {
			continue
		}
		ratio, _ := alloc.SpentAmount.Div(alloc.AllocatedAmount).Float64()
		if ratio > 1 {
			overspend := alloc.SpentAmount.Sub(alloc.AllocatedAmount).InexactFloat64()
			recs = append(recs, Recommendation{
				Type:             RecCategoryOverrun,
				Priority:         PriorityHigh,
				Impact:           "rebalance_allocation",
				Message:          fmt.Sprintf("Category spend is %.0f%% of its allocation.", ratio*100),
				CategoryID:       alloc.CategoryID,
				PotentialSavings: overspend,
				Metadata: map[string]float64{
					"utilization": ratio,
					"allocated":   alloc.AllocatedAmount.InexactFloat64(),
					"spent":       alloc.SpentAmount.InexactFloat64(),
				},
			})
		}
	}

	for _, alloc := range budget.Allocations {
		if persistentlyUnderutilized(alloc, history) {
			ratio, _ := alloc.SpentAmount.Div(alloc.AllocatedAmount).Float64()
			recs = append(recs, Recommendation{
				Type:       RecUnderutilization,
				Priority:   PriorityLow,
				Impact:     "reallocate_surplus",
				Message:    "Category has stayed under half its allocation across periods; consider reallocating.",
				CategoryID: alloc.CategoryID,
				Metadata: map[string]float64{
					"utilization": ratio,
					"allocated":   alloc.AllocatedAmount.InexactFloat64(),
				},
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

// persistentlyUnderutilized requires the category to sit under the
// threshold both in the current budget and in at least one prior period.
func persistentlyUnderutilized(alloc core.CategoryAllocation, history []core.Budget) bool {
	if !alloc.AllocatedAmount.IsPositive() {
		return false
	}
	ratio, _ := alloc.SpentAmount.Div(alloc.AllocatedAmount).Float64()
	if ratio >= underutilizedThreshold {
		return false
	}
	for _, past := range history {
		for _, pastAlloc := range past.Allocations {
			if pastAlloc.CategoryID != alloc.CategoryID || !pastAlloc.AllocatedAmount.IsPositive() {
				continue
			}
			pastRatio, _ := pastAlloc.SpentAmount.Div(pastAlloc.AllocatedAmount).Float64()
			if pastRatio < underutilizedThreshold {
				return true
			}
		}
	}
	return false
}

func priorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}
