package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type stubTransactionStore struct {
	txs []core.Transaction
	err error
}

func (s *stubTransactionStore) Find(_ context.Context, userID string, f analytics.TransactionFilter) ([]core.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !tx.Date.Before(f.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

type stubBudgetStore struct{}

func (stubBudgetStore) Find(context.Context, string, analytics.BudgetFilter) ([]core.Budget, error) {
	return nil, nil
}

func (stubBudgetStore) FindByID(context.Context, string, string) (core.Budget, error) {
	return core.Budget{}, core.NewNotFoundError("budget", "")
}

func (stubBudgetStore) UpdateSpentAmount(context.Context, string, string, decimal.Decimal) error {
	return nil
}

type stubGoalStore struct {
	goals []core.Goal
}

func (s *stubGoalStore) Find(_ context.Context, userID string, _ analytics.GoalFilter) ([]core.Goal, error) {
	var out []core.Goal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

type stubCategoryStore struct{}

func (stubCategoryStore) FindByID(_ context.Context, id string) (core.Category, error) {
	return core.Category{}, core.NewNotFoundError("category", id)
}

func newTestComposer(txStore analytics.TransactionStore, goalStore analytics.GoalStore) *Composer {
	if txStore == nil {
		txStore = &stubTransactionStore{}
	}
	if goalStore == nil {
		goalStore = &stubGoalStore{}
	}
	engine := analytics.NewEngine(txStore, stubBudgetStore{}, goalStore, stubCategoryStore{}, nil).
		WithClock(func() time.Time { return testNow })
	return NewComposer(engine, nil).WithClock(func() time.Time { return testNow })
}

func TestCompose(t *testing.T) {
	txStore := &stubTransactionStore{txs: []core.Transaction{
		{ID: "t1", UserID: "user-1", Amount: dec("3000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 6, 2)},
		{ID: "t2", UserID: "user-1", Amount: dec("900"), Type: core.TransactionExpense, CategoryID: "rent", Date: day(2025, 6, 3)},
		{ID: "t3", UserID: "user-1", Amount: dec("300"), Type: core.TransactionExpense, CategoryID: "food", Date: day(2025, 6, 5)},
		{ID: "t4", UserID: "user-1", Amount: dec("200"), Type: core.TransactionExpense, CategoryID: "fun", Date: day(2025, 6, 7)},
		{ID: "t5", UserID: "user-1", Amount: dec("100"), Type: core.TransactionExpense, CategoryID: "misc", Date: day(2025, 6, 8)},
	}}
	goalStore := &stubGoalStore{goals: []core.Goal{
		{ID: "g1", UserID: "user-1", TargetAmount: dec("1000"), CurrentAmount: dec("500"), TargetDate: day(2026, 1, 1), Status: core.GoalActive},
	}}
	c := newTestComposer(txStore, goalStore)

	summary, err := c.Compose(context.Background(), "user-1", "month")
	require.NoError(t, err)

	assert.Equal(t, "month", summary.Period)
	assert.Equal(t, 3000.0, summary.MonthlyIncome)
	assert.Equal(t, 1500.0, summary.MonthlyExpenses)
	assert.Equal(t, 50.0, summary.SavingsRate)
	assert.Equal(t, 50.0, summary.GoalProgress)

	// Only the three largest expense categories surface.
	require.Len(t, summary.TopExpenseCategories, 3)
	assert.Equal(t, "rent", summary.TopExpenseCategories[0].CategoryID)
	assert.Equal(t, "food", summary.TopExpenseCategories[1].CategoryID)
	assert.Equal(t, "fun", summary.TopExpenseCategories[2].CategoryID)

	require.NotEmpty(t, summary.RecentTrends)
	assert.Equal(t, "2025-06", summary.RecentTrends[0].Period)
}

func TestCompose_SavingsRateAveragesMonthly(t *testing.T) {
	// April saves 50%, May saves 5%. The dashboard rate is the mean of the
	// monthly rates (27.5), not the rate of the aggregated totals (20).
	txStore := &stubTransactionStore{txs: []core.Transaction{
		{ID: "t1", UserID: "user-1", Amount: dec("1000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 4, 1)},
		{ID: "t2", UserID: "user-1", Amount: dec("500"), Type: core.TransactionExpense, CategoryID: "rent", Date: day(2025, 4, 2)},
		{ID: "t3", UserID: "user-1", Amount: dec("2000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 5, 1)},
		{ID: "t4", UserID: "user-1", Amount: dec("1900"), Type: core.TransactionExpense, CategoryID: "rent", Date: day(2025, 5, 2)},
	}}
	c := newTestComposer(txStore, nil)

	summary, err := c.Compose(context.Background(), "user-1", "year")
	require.NoError(t, err)
	assert.Equal(t, 27.5, summary.SavingsRate)
}

func TestCompose_DefaultPeriodToken(t *testing.T) {
	c := newTestComposer(nil, nil)

	summary, err := c.Compose(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "month", summary.Period)
}

func TestCompose_GeneratorFailureFailsWhole(t *testing.T) {
	txStore := &stubTransactionStore{err: errors.New("store offline")}
	c := newTestComposer(txStore, nil)

	_, err := c.Compose(context.Background(), "user-1", "month")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compose dashboard")
}

func TestCompose_EmptyUserID(t *testing.T) {
	c := newTestComposer(nil, nil)

	_, err := c.Compose(context.Background(), "", "month")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}
