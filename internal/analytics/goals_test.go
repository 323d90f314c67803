package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func TestGoalProgressReport(t *testing.T) {
	goalStore := &fakeGoalStore{goals: []core.Goal{
		{ID: "g1", UserID: "user-1", Name: "Emergency fund", TargetAmount: dec("10000"), CurrentAmount: dec("7500"), TargetDate: day(2025, 12, 31), Status: core.GoalActive},
		{ID: "g2", UserID: "user-1", Name: "Vacation", TargetAmount: dec("2000"), CurrentAmount: dec("2000"), TargetDate: day(2025, 8, 1), Status: core.GoalCompleted},
	}}
	e := newTestEngine(nil, nil, goalStore, nil)

	data, meta, err := e.GoalProgressReport(context.Background(), "user-1", core.DateWindow{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, data.Summary.TotalGoals)
	assert.Equal(t, 1, data.Summary.CompletedGoals)
	assert.Equal(t, 87.5, data.Summary.AverageProgress)

	require.Len(t, data.Goals, 2)
	assert.Equal(t, 75.0, data.Goals[0].Progress)
	assert.Equal(t, "2025-12-31", data.Goals[0].TargetDate)
	assert.Positive(t, data.Goals[0].DaysRemaining)
	assert.Equal(t, 100.0, data.Goals[1].Progress)

	assert.Equal(t, 2, meta.TotalRecords)
}

func TestGoalProgressReport_SingleGoalFilter(t *testing.T) {
	goalStore := &fakeGoalStore{goals: []core.Goal{
		{ID: "g1", UserID: "user-1", TargetAmount: dec("1000"), CurrentAmount: dec("100"), TargetDate: day(2026, 1, 1), Status: core.GoalActive},
	}}
	e := newTestEngine(nil, nil, goalStore, nil)

	data, _, err := e.GoalProgressReport(context.Background(), "user-1", core.DateWindow{}, Options{GoalID: "g1"})
	require.NoError(t, err)
	require.Len(t, data.Goals, 1)
	assert.Equal(t, "g1", data.Goals[0].GoalID)

	_, _, err = e.GoalProgressReport(context.Background(), "user-1", core.DateWindow{}, Options{GoalID: "missing"})
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestGoalProgressReport_ZeroTarget(t *testing.T) {
	goalStore := &fakeGoalStore{goals: []core.Goal{
		{ID: "g1", UserID: "user-1", TargetAmount: dec("0"), CurrentAmount: dec("50"), TargetDate: day(2026, 1, 1), Status: core.GoalActive},
	}}
	e := newTestEngine(nil, nil, goalStore, nil)

	data, _, err := e.GoalProgressReport(context.Background(), "user-1", core.DateWindow{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, data.Goals[0].Progress, "zero target never divides by zero")
}
