package health

import (
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// Health levels bucket the composite score.
const (
	LevelExcellent = "Excellent"
	LevelGood      = "Good"
	LevelFair      = "Fair"
	LevelPoor      = "Poor"
	LevelCritical  = "Critical"
)

// Sub-score weights. They sum to 100 so the composite is itself a 0-100
// score.
const (
	weightSpendingControl = 40
	weightSavingsRate     = 25
	weightGoalProgress    = 20
	weightEmergencyFund   = 15
)

// Score thresholds for the health levels.
const (
	levelExcellentMin = 90
	levelGoodMin      = 75
	levelFairMin      = 60
	levelPoorMin      = 40
)

// Input carries everything the scorer needs, already fetched and
// aggregated by the caller.
type Input struct {
	Budget core.Budget
	// SavingsRate is the signed savings percentage over the budget period.
	SavingsRate float64
	// AverageGoalProgress is the mean goal completion percentage.
	AverageGoalProgress float64
	// EmergencyFundMonths is liquid savings divided by average monthly
	// expenses.
	EmergencyFundMonths float64
	Now                 time.Time
}

// HealthScore is the weighted composite with its sub-scores and the
// guidance derived from them.
type HealthScore struct {
	OverallScore         float64  `json:"overallScore"`
	SpendingControlScore float64  `json:"spendingControlScore"`
	SavingsRateScore     float64  `json:"savingsRateScore"`
	GoalProgressScore    float64  `json:"goalProgressScore"`
	EmergencyFundScore   float64  `json:"emergencyFundScore"`
	HealthLevel          string   `json:"healthLevel"`
	ImprovementAreas     []string `json:"improvementAreas"`
	Recommendations      []string `json:"recommendations"`
}

// Score computes the weighted budget health composite. The overall score is
// always clamped to [0,100] and the level buckets are exact at their
// boundaries: 90, 75, 60, 40.
func Score(in Input) HealthScore {
	metrics := ComputeMetrics(in.Budget, in.Now)

	s := HealthScore{
		SpendingControlScore: spendingControlScore(in.Budget, metrics),
		SavingsRateScore:     savingsRateScore(in.SavingsRate),
		GoalProgressScore:    clamp(in.AverageGoalProgress, 0, 100),
		EmergencyFundScore:   emergencyFundScore(in.EmergencyFundMonths),
	}

	overall := s.SpendingControlScore*weightSpendingControl/100 +
		s.SavingsRateScore*weightSavingsRate/100 +
		s.GoalProgressScore*weightGoalProgress/100 +
		s.EmergencyFundScore*weightEmergencyFund/100
	s.OverallScore = clamp(round1(overall), 0, 100)
	s.HealthLevel = healthLevel(s.OverallScore)
	s.ImprovementAreas = improvementAreas(s)
	s.Recommendations = adviceLines(s, metrics)

	return s
}

func healthLevel(score float64) string {
	switch {
	case score >= levelExcellentMin:
		return LevelExcellent
	case score >= levelGoodMin:
		return LevelGood
	case score >= levelFairMin:
		return LevelFair
	case score >= levelPoorMin:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// spendingControlScore starts from full marks and penalizes overall
// overspend plus each over-allocated category line.
func spendingControlScore(budget core.Budget, m PerformanceMetrics) float64 {
	score := decimal.NewFromInt(100)
	if m.UtilizationRate > 1 {
		over := decimal.NewFromFloat(m.UtilizationRate).Sub(decimal.NewFromInt(1))
		score = score.Sub(over.Mul(decimal.NewFromInt(200)))
	}
	for _, alloc := range budget.Allocations {
		if alloc.AllocatedAmount.IsPositive() && alloc.SpentAmount.GreaterThan(alloc.AllocatedAmount) {
			score = score.Sub(decimal.NewFromInt(5))
		}
	}
	return clamp(score.Round(2).InexactFloat64(), 0, 100)
}

// savingsRateScore maps a signed savings rate onto 0-100: 20% or better is
// full marks, 10% is the midpoint, zero or negative scores zero.
func savingsRateScore(rate float64) float64 {
	switch {
	case rate >= 20:
		return 100
	case rate >= 10:
		return 50 + (rate-10)*5
	case rate > 0:
		return rate * 5
	default:
		return 0
	}
}

// emergencyFundScore grants full marks at six months of coverage.
func emergencyFundScore(months float64) float64 {
	if months >= 6 {
		return 100
	}
	if months <= 0 {
		return 0
	}
	return months / 6 * 100
}

func improvementAreas(s HealthScore) []string {
	var areas []string
	if s.SpendingControlScore < 60 {
		areas = append(areas, "spending_control")
	}
	if s.SavingsRateScore < 60 {
		areas = append(areas, "savings_rate")
	}
	if s.GoalProgressScore < 60 {
		areas = append(areas, "goal_progress")
	}
	if s.EmergencyFundScore < 60 {
		areas = append(areas, "emergency_fund")
	}
	return areas
}

func adviceLines(s HealthScore, m PerformanceMetrics) []string {
	var lines []string
	if s.SpendingControlScore < 60 {
		lines = append(lines, "Reduce spending in over-allocated categories to bring the budget back on plan.")
	}
	if s.SavingsRateScore < 60 {
		lines = append(lines, "Aim for a savings rate of at least 20% of income.")
	}
	if s.GoalProgressScore < 60 {
		lines = append(lines, "Set up recurring contributions toward your goals.")
	}
	if s.EmergencyFundScore < 60 {
		lines = append(lines, "Build an emergency fund covering six months of expenses.")
	}
	if !m.IsOnTrack && m.ProjectedOverrun > 0 {
		lines = append(lines, "Current burn rate projects an end-of-period overrun; slow discretionary spending.")
	}
	return lines
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(f float64) float64 {
	if f < 0 {
		return float64(int64(f*10-0.5)) / 10
	}
	return float64(int64(f*10+0.5)) / 10
}
