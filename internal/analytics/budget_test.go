package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func seedBudgetFixture() (*fakeTransactionStore, *fakeBudgetStore) {
	txStore := &fakeTransactionStore{txs: []core.Transaction{
		{ID: "t1", UserID: "user-1", Amount: dec("1200"), Type: core.TransactionExpense, CategoryID: "housing", Date: day(2025, 6, 2)},
		{ID: "t2", UserID: "user-1", Amount: dec("900"), Type: core.TransactionExpense, CategoryID: "housing", Date: day(2025, 6, 20)},
		{ID: "t3", UserID: "user-1", Amount: dec("500"), Type: core.TransactionExpense, CategoryID: "food", Date: day(2025, 6, 30)},
		// Outside the budget period.
		{ID: "t4", UserID: "user-1", Amount: dec("999"), Type: core.TransactionExpense, CategoryID: "food", Date: day(2025, 7, 1)},
		// Income never counts toward spend.
		{ID: "t5", UserID: "user-1", Amount: dec("3000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 6, 10)},
	}}
	budgetStore := &fakeBudgetStore{budgets: []core.Budget{{
		ID:        "budget-1",
		UserID:    "user-1",
		Name:      "June",
		StartDate: day(2025, 6, 1),
		EndDate:   day(2025, 6, 30),
		Allocations: []core.CategoryAllocation{
			{CategoryID: "housing", AllocatedAmount: dec("2000")},
			{CategoryID: "food", AllocatedAmount: dec("1000")},
		},
	}}}
	return txStore, budgetStore
}

func TestBudgetPerformanceReport(t *testing.T) {
	txStore, budgetStore := seedBudgetFixture()
	e := newTestEngine(txStore, budgetStore, nil, nil)

	window := core.DateWindow{Start: day(2025, 6, 1), End: day(2025, 7, 1)}
	data, meta, err := e.BudgetPerformanceReport(context.Background(), "user-1", window, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, data.Summary.TotalBudgets)
	assert.Equal(t, 1, data.Summary.CategoriesOverBudget)
	// 2600 spent of 3000 allocated.
	assert.Equal(t, 86.67, data.Summary.OverallPerformancePercentage)
	assert.Equal(t, 400.0, data.Summary.TotalVariance)

	require.Len(t, data.Budgets, 1)
	require.Len(t, data.Budgets[0].Categories, 2)

	housing := data.Budgets[0].Categories[0]
	assert.Equal(t, "housing", housing.CategoryID)
	assert.Equal(t, 2100.0, housing.SpentAmount)
	assert.Equal(t, 105.0, housing.Utilization)
	assert.Equal(t, -100.0, housing.Variance)
	assert.True(t, housing.OverBudget)

	food := data.Budgets[0].Categories[1]
	assert.Equal(t, 500.0, food.SpentAmount)
	assert.Equal(t, 50.0, food.Utilization)
	assert.False(t, food.OverBudget)

	// Inclusive end date: the June 30 transaction counts, July 1 does not.
	assert.Equal(t, 3, meta.TotalRecords)

	// Spent amounts were written through the store.
	require.Len(t, budgetStore.updates, 2)
	assert.True(t, budgetStore.updates[0].amount.Equal(dec("2100")))
	assert.True(t, budgetStore.updates[1].amount.Equal(dec("500")))
}

func TestBudgetPerformanceReport_RecomputeIsIdempotent(t *testing.T) {
	txStore, budgetStore := seedBudgetFixture()
	e := newTestEngine(txStore, budgetStore, nil, nil)

	window := core.DateWindow{Start: day(2025, 6, 1), End: day(2025, 7, 1)}
	first, _, err := e.BudgetPerformanceReport(context.Background(), "user-1", window, Options{})
	require.NoError(t, err)
	second, _, err := e.BudgetPerformanceReport(context.Background(), "user-1", window, Options{})
	require.NoError(t, err)

	// Re-running with no new transactions replaces, never increments.
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Budgets[0].Categories[0].SpentAmount, second.Budgets[0].Categories[0].SpentAmount)
}

func TestRecomputeBudget(t *testing.T) {
	txStore, budgetStore := seedBudgetFixture()
	e := newTestEngine(txStore, budgetStore, nil, nil)

	budget, err := e.RecomputeBudget(context.Background(), "user-1", budgetStore.budgets[0])
	require.NoError(t, err)

	assert.True(t, budget.Allocations[0].SpentAmount.Equal(dec("2100")))
	assert.True(t, budget.Allocations[1].SpentAmount.Equal(dec("500")))
	assert.Len(t, budgetStore.updates, 2)
}

func TestBudgetPerformanceReport_NoBudgets(t *testing.T) {
	e := newTestEngine(&fakeTransactionStore{}, &fakeBudgetStore{}, nil, nil)

	data, meta, err := e.BudgetPerformanceReport(context.Background(), "user-1", core.DateWindow{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, data.Summary.TotalBudgets)
	assert.Zero(t, data.Summary.OverallPerformancePercentage)
	assert.Zero(t, meta.TotalRecords)
}
