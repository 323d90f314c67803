package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

// The repository satisfies each analytics store contract through a thin
// view type, so callers depend on the narrow interface they actually use.

type transactionStore struct{ r *SQLiteRepository }
type budgetStore struct{ r *SQLiteRepository }
type goalStore struct{ r *SQLiteRepository }
type categoryStore struct{ r *SQLiteRepository }

// Transactions returns the repository as an analytics.TransactionStore.
func (r *SQLiteRepository) Transactions() analytics.TransactionStore {
	return transactionStore{r}
}

// Budgets returns the repository as an analytics.BudgetStore.
func (r *SQLiteRepository) Budgets() analytics.BudgetStore {
	return budgetStore{r}
}

// Goals returns the repository as an analytics.GoalStore.
func (r *SQLiteRepository) Goals() analytics.GoalStore {
	return goalStore{r}
}

// Categories returns the repository as an analytics.CategoryStore.
func (r *SQLiteRepository) Categories() analytics.CategoryStore {
	return categoryStore{r}
}

func (s transactionStore) Find(ctx context.Context, userID string, filter analytics.TransactionFilter) ([]core.Transaction, error) {
	return s.r.FindTransactions(ctx, userID, filter)
}

func (s budgetStore) Find(ctx context.Context, userID string, filter analytics.BudgetFilter) ([]core.Budget, error) {
	return s.r.FindBudgets(ctx, userID, filter)
}

func (s budgetStore) FindByID(ctx context.Context, userID, budgetID string) (core.Budget, error) {
	return s.r.FindBudgetByID(ctx, userID, budgetID)
}

func (s budgetStore) UpdateSpentAmount(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) error {
	return s.r.UpdateSpentAmount(ctx, budgetID, categoryID, amount)
}

func (s goalStore) Find(ctx context.Context, userID string, filter analytics.GoalFilter) ([]core.Goal, error) {
	return s.r.FindGoals(ctx, userID, filter)
}

func (s categoryStore) FindByID(ctx context.Context, categoryID string) (core.Category, error) {
	return s.r.FindCategory(ctx, categoryID)
}
