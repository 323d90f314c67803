// Package storage implements the analytics store contracts on SQLite.
// Transactions, categories, budgets, and goals are written by the wider
// system; this engine reads them and only writes budget spent amounts and
// its own report records.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for test seeding.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// FindTransactions backs analytics.TransactionStore.
func (r *SQLiteRepository) FindTransactions(ctx context.Context, userID string, filter analytics.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, amount, type, category_id, date, description
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.CategoryID != "" {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if !filter.From.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.From.UTC().Format(timeLayout))
	}
	if !filter.To.IsZero() {
		query += " AND date < ?"
		args = append(args, filter.To.UTC().Format(timeLayout))
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx           core.Transaction
			amount, date string
			txType       string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &txType, &tx.CategoryID, &date, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if tx.Date, err = time.Parse(timeLayout, date); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		tx.Type = core.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// FindCategory backs analytics.CategoryStore.
func (r *SQLiteRepository) FindCategory(ctx context.Context, categoryID string) (core.Category, error) {
	var cat core.Category
	var catType string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, color FROM categories WHERE id = ?`, categoryID).
		Scan(&cat.ID, &cat.UserID, &cat.Name, &catType, &cat.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NewNotFoundError("category", categoryID)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("query category: %w", err)
	}
	cat.Type = core.CategoryType(catType)
	return cat, nil
}

// FindBudgets backs the budget lookup of analytics.BudgetStore.
func (r *SQLiteRepository) FindBudgets(ctx context.Context, userID string, filter analytics.BudgetFilter) ([]core.Budget, error) {
	query := `SELECT id, user_id, name, total_amount, period, start_date, end_date
	          FROM budgets WHERE user_id = ?`
	args := []any{userID}

	w := filter.ActiveWithin
	if !w.End.IsZero() {
		query += " AND start_date <= ?"
		args = append(args, w.End.UTC().Format(timeLayout))
	}
	if !w.Start.IsZero() {
		query += " AND end_date >= ?"
		args = append(args, w.Start.UTC().Format(timeLayout))
	}
	query += " ORDER BY start_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range budgets {
		if budgets[i].Allocations, err = r.loadAllocations(ctx, budgets[i].ID); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// FindBudgetByID loads a single budget, distinguishing unknown ids from
// budgets owned by another user. Both render the same to API callers.
func (r *SQLiteRepository) FindBudgetByID(ctx context.Context, userID, budgetID string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, total_amount, period, start_date, end_date
		 FROM budgets WHERE id = ?`, budgetID)

	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.NewNotFoundError("budget", budgetID)
	}
	if err != nil {
		return core.Budget{}, err
	}
	if budget.UserID != userID {
		return core.Budget{}, core.NewAuthorizationError("budget", budgetID)
	}
	if budget.Allocations, err = r.loadAllocations(ctx, budget.ID); err != nil {
		return core.Budget{}, err
	}
	return budget, nil
}

// UpdateSpentAmount replaces one allocation's spent amount. The engine
// recomputes the full value from source transactions before calling this,
// so the write is a per-line replacement rather than an increment and two
// racing recomputes converge on the same value.
func (r *SQLiteRepository) UpdateSpentAmount(ctx context.Context, budgetID, categoryID string, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_allocations SET spent_amount = ? WHERE budget_id = ? AND category_id = ?`,
		amount.String(), budgetID, categoryID)
	if err != nil {
		return fmt.Errorf("update spent amount: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NewNotFoundError("budget allocation", budgetID+"/"+categoryID)
	}
	return nil
}

// FindGoals backs analytics.GoalStore.
func (r *SQLiteRepository) FindGoals(ctx context.Context, userID string, filter analytics.GoalFilter) ([]core.Goal, error) {
	query := `SELECT id, user_id, name, target_amount, current_amount, target_date, status
	          FROM goals WHERE user_id = ?`
	args := []any{userID}
	if filter.GoalID != "" {
		query += " AND id = ?"
		args = append(args, filter.GoalID)
	}
	query += " ORDER BY target_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var (
			goal                  core.Goal
			target, current, date string
			status                string
		)
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Name, &target, &current, &date, &status); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parse target amount %q: %w", target, err)
		}
		if goal.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("parse current amount %q: %w", current, err)
		}
		if goal.TargetDate, err = time.Parse(timeLayout, date); err != nil {
			return nil, fmt.Errorf("parse target date %q: %w", date, err)
		}
		goal.Status = core.GoalStatus(status)
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) loadAllocations(ctx context.Context, budgetID string) ([]core.CategoryAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, allocated_amount, spent_amount
		 FROM budget_allocations WHERE budget_id = ? ORDER BY category_id ASC`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	var allocs []core.CategoryAllocation
	for rows.Next() {
		var alloc core.CategoryAllocation
		var allocated, spent string
		if err := rows.Scan(&alloc.CategoryID, &allocated, &spent); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		if alloc.AllocatedAmount, err = decimal.NewFromString(allocated); err != nil {
			return nil, fmt.Errorf("parse allocated amount %q: %w", allocated, err)
		}
		if alloc.SpentAmount, err = decimal.NewFromString(spent); err != nil {
			return nil, fmt.Errorf("parse spent amount %q: %w", spent, err)
		}
		allocs = append(allocs, alloc)
	}
	return allocs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		budget            core.Budget
		total, start, end string
	)
	if err := row.Scan(&budget.ID, &budget.UserID, &budget.Name, &total, &budget.Period, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, err
		}
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	var err error
	if budget.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return core.Budget{}, fmt.Errorf("parse total amount %q: %w", total, err)
	}
	if budget.StartDate, err = time.Parse(timeLayout, start); err != nil {
		return core.Budget{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	if budget.EndDate, err = time.Parse(timeLayout, end); err != nil {
		return core.Budget{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	return budget, nil
}
