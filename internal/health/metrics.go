// Package health scores budget health and derives ranked optimization
// recommendations. Everything here is a pure function of already-fetched
// records: no store or transport dependencies.
package health

import (
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// onTrackTolerance is the slack allowed between utilization and elapsed
// time before a budget is considered off track.
const onTrackTolerance = 0.05

// PerformanceMetrics are the burn-rate figures every score and
// recommendation is derived from.
type PerformanceMetrics struct {
	TotalBudget          float64 `json:"totalBudget"`
	TotalSpent           float64 `json:"totalSpent"`
	UtilizationRate      float64 `json:"utilizationRate"`
	TimeProgress         float64 `json:"timeProgress"`
	DailySpendingRate    float64 `json:"dailySpendingRate"`
	IdealBurnRate        float64 `json:"idealBurnRate"`
	BurnRateVariance     float64 `json:"burnRateVariance"`
	ProjectedEndSpending float64 `json:"projectedEndSpending"`
	ProjectedOverrun     float64 `json:"projectedOverrun"`
	IsOnTrack            bool    `json:"isOnTrack"`
	ElapsedDays          int     `json:"elapsedDays"`
	TotalDays            int     `json:"totalDays"`
}

// ComputeMetrics derives burn-rate metrics for a budget as of now. The
// budget's spent amounts are taken as given; recomputing them from source
// transactions is the analytics engine's job.
func ComputeMetrics(budget core.Budget, now time.Time) PerformanceMetrics {
	totalBudget := budget.TotalAmount
	if totalBudget.IsZero() {
		totalBudget = budget.TotalAllocated()
	}
	totalSpent := budget.TotalSpent()

	totalDays := wholeDays(budget.StartDate, budget.EndDate)
	elapsedDays := wholeDays(budget.StartDate, now)
	if elapsedDays > totalDays {
		elapsedDays = totalDays
	}
	if elapsedDays < 1 {
		elapsedDays = 1
	}

	m := PerformanceMetrics{
		TotalBudget: totalBudget.InexactFloat64(),
		TotalSpent:  totalSpent.InexactFloat64(),
		ElapsedDays: elapsedDays,
		TotalDays:   totalDays,
	}

	if totalBudget.IsPositive() {
		m.UtilizationRate, _ = totalSpent.Div(totalBudget).Float64()
	}
	if totalDays > 0 {
		m.TimeProgress = float64(elapsedDays) / float64(totalDays)
		ideal, _ := totalBudget.Div(decimal.NewFromInt(int64(totalDays))).Float64()
		m.IdealBurnRate = ideal
	}
	daily, _ := totalSpent.Div(decimal.NewFromInt(int64(elapsedDays))).Float64()
	m.DailySpendingRate = daily
	m.BurnRateVariance = m.DailySpendingRate - m.IdealBurnRate
	m.ProjectedEndSpending = m.DailySpendingRate * float64(totalDays)
	if overrun := m.ProjectedEndSpending - m.TotalBudget; overrun > 0 {
		m.ProjectedOverrun = overrun
	}
	m.IsOnTrack = m.UtilizationRate <= m.TimeProgress+onTrackTolerance

	return m
}

func wholeDays(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}
