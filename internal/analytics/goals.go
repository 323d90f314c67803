package analytics

import (
	"context"
	"fmt"

	"finsight/internal/core"
)

// GoalProgressData is the goal-progress report payload.
type GoalProgressData struct {
	Summary GoalProgressSummary `json:"summary"`
	Goals   []GoalProgress      `json:"goals"`
}

type GoalProgressSummary struct {
	TotalGoals      int     `json:"totalGoals"`
	CompletedGoals  int     `json:"completedGoals"`
	AverageProgress float64 `json:"averageProgress"`
}

// GoalProgress is one goal's standing. Progress is uncapped; callers decide
// whether to clamp past 100.
type GoalProgress struct {
	GoalID        string  `json:"goalId"`
	Name          string  `json:"name,omitempty"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Progress      float64 `json:"progress"`
	DaysRemaining int     `json:"daysRemaining"`
	TargetDate    string  `json:"targetDate"`
	Status        string  `json:"status"`
}

// GoalProgressReport computes progress and time remaining per goal,
// optionally restricted to a single goal id.
func (e *Engine) GoalProgressReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (GoalProgressData, core.ReportMetadata, error) {
	goals, err := e.goals.Find(ctx, userID, GoalFilter{GoalID: opts.GoalID})
	if err != nil {
		return GoalProgressData{}, core.ReportMetadata{}, fmt.Errorf("find goals: %w", err)
	}
	if opts.GoalID != "" && len(goals) == 0 {
		return GoalProgressData{}, core.ReportMetadata{}, core.NewNotFoundError("goal", opts.GoalID)
	}

	now := e.now()
	var (
		rows      []GoalProgress
		completed int
		sum       float64
	)
	for _, goal := range goals {
		progress := round2(goal.Progress())
		if goal.Status == core.GoalCompleted {
			completed++
		}
		rows = append(rows, GoalProgress{
			GoalID:        goal.ID,
			Name:          goal.Name,
			TargetAmount:  goal.TargetAmount.InexactFloat64(),
			CurrentAmount: goal.CurrentAmount.InexactFloat64(),
			Progress:      progress,
			DaysRemaining: goal.DaysRemaining(now),
			TargetDate:    goal.TargetDate.Format("2006-01-02"),
			Status:        string(goal.Status),
		})
		sum += progress
	}

	summary := GoalProgressSummary{
		TotalGoals:     len(goals),
		CompletedGoals: completed,
	}
	if len(goals) > 0 {
		summary.AverageProgress = round2(sum / float64(len(goals)))
	}

	data := GoalProgressData{Summary: summary, Goals: rows}
	meta := core.ReportMetadata{TotalRecords: len(goals)}
	return data, meta, nil
}
