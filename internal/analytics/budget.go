package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
	"finsight/internal/log"
)

// BudgetPerformanceData is the budget-performance report payload.
type BudgetPerformanceData struct {
	Summary BudgetPerformanceSummary `json:"summary"`
	Budgets []BudgetPerformance      `json:"budgets"`
}

type BudgetPerformanceSummary struct {
	// OverallPerformancePercentage is utilization weighted by allocation:
	// total spent over total allocated across every active budget line.
	OverallPerformancePercentage float64 `json:"overallPerformancePercentage"`
	CategoriesOverBudget         int     `json:"categoriesOverBudget"`
	// TotalVariance is allocated minus spent summed over all lines;
	// negative means overspend.
	TotalVariance float64 `json:"totalVariance"`
	TotalBudgets  int     `json:"totalBudgets"`
}

type BudgetPerformance struct {
	BudgetID   string                `json:"budgetId"`
	Name       string                `json:"name,omitempty"`
	StartDate  string                `json:"startDate"`
	EndDate    string                `json:"endDate"`
	Categories []CategoryPerformance `json:"categories"`
}

type CategoryPerformance struct {
	CategoryID      string  `json:"categoryId"`
	CategoryName    string  `json:"categoryName"`
	AllocatedAmount float64 `json:"allocatedAmount"`
	SpentAmount     float64 `json:"spentAmount"`
	Utilization     float64 `json:"utilization"`
	Variance        float64 `json:"variance"`
	OverBudget      bool    `json:"overBudget"`
}

// BudgetPerformanceReport compares allocations against recomputed spend for
// every budget active within the window.
//
// This is the one generator with a side effect: each allocation's spent
// amount is recomputed from source transactions over the budget period and
// written back through the budget store. The recompute is a full
// replacement, never an increment, so repeating it with no new transactions
// yields the same value.
func (e *Engine) BudgetPerformanceReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (BudgetPerformanceData, core.ReportMetadata, error) {
	budgets, err := e.budgets.Find(ctx, userID, BudgetFilter{ActiveWithin: window})
	if err != nil {
		return BudgetPerformanceData{}, core.ReportMetadata{}, fmt.Errorf("find budgets: %w", err)
	}

	var (
		rows           []BudgetPerformance
		totalAllocated = decimal.Zero
		totalSpent     = decimal.Zero
		overBudget     int
		records        int
	)

	for _, budget := range budgets {
		row := BudgetPerformance{
			BudgetID:  budget.ID,
			Name:      budget.Name,
			StartDate: budget.StartDate.Format("2006-01-02"),
			EndDate:   budget.EndDate.Format("2006-01-02"),
		}

		for _, alloc := range budget.Allocations {
			spent, count, err := e.recomputeSpent(ctx, userID, budget, alloc.CategoryID)
			if err != nil {
				return BudgetPerformanceData{}, core.ReportMetadata{}, err
			}
			records += count

			if err := e.budgets.UpdateSpentAmount(ctx, budget.ID, alloc.CategoryID, spent); err != nil {
				return BudgetPerformanceData{}, core.ReportMetadata{}, fmt.Errorf("update spent amount: %w", err)
			}

			utilization := 0.0
			if alloc.AllocatedAmount.IsPositive() {
				utilization, _ = spent.Div(alloc.AllocatedAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			}
			over := spent.GreaterThan(alloc.AllocatedAmount)
			if over {
				overBudget++
			}

			name, _ := e.categoryLabel(ctx, alloc.CategoryID)
			row.Categories = append(row.Categories, CategoryPerformance{
				CategoryID:      alloc.CategoryID,
				CategoryName:    name,
				AllocatedAmount: alloc.AllocatedAmount.InexactFloat64(),
				SpentAmount:     spent.InexactFloat64(),
				Utilization:     utilization,
				Variance:        alloc.AllocatedAmount.Sub(spent).InexactFloat64(),
				OverBudget:      over,
			})

			totalAllocated = totalAllocated.Add(alloc.AllocatedAmount)
			totalSpent = totalSpent.Add(spent)
		}
		rows = append(rows, row)
	}

	overall := 0.0
	if totalAllocated.IsPositive() {
		overall, _ = totalSpent.Div(totalAllocated).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	data := BudgetPerformanceData{
		Summary: BudgetPerformanceSummary{
			OverallPerformancePercentage: overall,
			CategoriesOverBudget:         overBudget,
			TotalVariance:                totalAllocated.Sub(totalSpent).InexactFloat64(),
			TotalBudgets:                 len(budgets),
		},
		Budgets: rows,
	}
	meta := core.ReportMetadata{TotalRecords: records}
	return data, meta, nil
}

// RecomputeBudget refreshes every allocation's spent amount for one budget
// from source transactions and persists the result. Returns the budget with
// the fresh values.
func (e *Engine) RecomputeBudget(ctx context.Context, userID string, budget core.Budget) (core.Budget, error) {
	for i, alloc := range budget.Allocations {
		spent, _, err := e.recomputeSpent(ctx, userID, budget, alloc.CategoryID)
		if err != nil {
			return core.Budget{}, err
		}
		if err := e.budgets.UpdateSpentAmount(ctx, budget.ID, alloc.CategoryID, spent); err != nil {
			return core.Budget{}, fmt.Errorf("update spent amount: %w", err)
		}
		budget.Allocations[i].SpentAmount = spent
	}
	return budget, nil
}

// recomputeSpent sums matching expense transactions over the budget's own
// period, which is inclusive of its end date.
func (e *Engine) recomputeSpent(ctx context.Context, userID string, budget core.Budget, categoryID string) (decimal.Decimal, int, error) {
	txs, err := e.transactions.Find(ctx, userID, TransactionFilter{
		CategoryID: categoryID,
		Type:       core.TransactionExpense,
		From:       budget.StartDate,
		To:         budget.EndDate.AddDate(0, 0, 1),
	})
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("find transactions for category %s: %w", categoryID, err)
	}

	spent := decimal.Zero
	for _, tx := range txs {
		spent = spent.Add(tx.Amount)
	}

	e.logger.InfoContext(ctx, "Recomputed allocation spend",
		log.FieldOperation, log.OpRecompute,
		log.FieldBudgetID, budget.ID,
		log.FieldCategoryID, categoryID,
		log.FieldRecords, len(txs))

	return spent, len(txs), nil
}
