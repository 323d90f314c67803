// Package analytics turns raw transaction, budget, and goal records into
// structured financial reports: spending, income, cash flow, budget
// performance, goal progress, and net worth.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// TransactionFilter narrows a transaction query. Zero values mean "any".
type TransactionFilter struct {
	CategoryID string
	Type       core.TransactionType
	From       time.Time
	To         time.Time
}

// BudgetFilter narrows a budget query to budgets overlapping a window.
type BudgetFilter struct {
	ActiveWithin core.DateWindow
}

// GoalFilter optionally restricts a goal query to a single goal.
type GoalFilter struct {
	GoalID string
}

// TransactionStore is the read-only source of transaction records.
type TransactionStore interface {
	Find(ctx context.Context, userID string, filter TransactionFilter) ([]core.Transaction, error)
}

// BudgetStore reads budgets and accepts targeted spent-amount recalculation
// writes. UpdateSpentAmount must replace the stored value atomically per
// budget line; the engine always recomputes from source transactions rather
// than incrementing, so repeating the write is safe.
type BudgetStore interface {
	Find(ctx context.Context, userID string, filter BudgetFilter) ([]core.Budget, error)
	FindByID(ctx context.Context, userID, budgetID string) (core.Budget, error)
	UpdateSpentAmount(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) error
}

// GoalStore is the read-only source of goal records.
type GoalStore interface {
	Find(ctx context.Context, userID string, filter GoalFilter) ([]core.Goal, error)
}

// CategoryStore resolves category ids to their display attributes.
type CategoryStore interface {
	FindByID(ctx context.Context, categoryID string) (core.Category, error)
}

// ReportStore persists the reports this engine owns. Records are immutable
// once completed; re-generation creates a new record.
type ReportStore interface {
	Create(ctx context.Context, report core.Report) (core.Report, error)
	FindRecent(ctx context.Context, userID string, limit int) ([]core.Report, error)
	FindByID(ctx context.Context, userID, reportID string) (core.Report, error)
}
