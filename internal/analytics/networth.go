package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// NetWorthData is the net-worth report payload.
type NetWorthData struct {
	Current     NetWorthSnapshot `json:"current"`
	Trends      []TrendPoint     `json:"trends,omitempty"`
	Projections []TrendPoint     `json:"projections,omitempty"`
}

type NetWorthSnapshot struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	NetWorth    float64 `json:"netWorth"`
}

// NetWorthReport derives a net-worth snapshot from the user's records:
// assets are accumulated goal savings plus the cumulative net cash position
// from transactions; liabilities are budget overruns not yet covered.
//
// With ProjectionMonths set, the snapshot is projected forward linearly at
// the trailing average monthly net cash-flow rate.
func (e *Engine) NetWorthReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (NetWorthData, core.ReportMetadata, error) {
	if opts.ProjectionMonths < 0 {
		return NetWorthData{}, core.ReportMetadata{}, core.NewValidationError("projectionMonths", "must not be negative")
	}

	txs, err := e.transactions.Find(ctx, userID, TransactionFilter{To: window.End})
	if err != nil {
		return NetWorthData{}, core.ReportMetadata{}, fmt.Errorf("find transactions: %w", err)
	}
	goals, err := e.goals.Find(ctx, userID, GoalFilter{})
	if err != nil {
		return NetWorthData{}, core.ReportMetadata{}, fmt.Errorf("find goals: %w", err)
	}
	budgets, err := e.budgets.Find(ctx, userID, BudgetFilter{ActiveWithin: window})
	if err != nil {
		return NetWorthData{}, core.ReportMetadata{}, fmt.Errorf("find budgets: %w", err)
	}

	// Cumulative cash position and per-month net flow.
	cash := decimal.Zero
	byMonth := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		switch tx.Type {
		case core.TransactionIncome:
			cash = cash.Add(tx.Amount)
			byMonth[monthKey(tx.Date)] = byMonth[monthKey(tx.Date)].Add(tx.Amount)
		case core.TransactionExpense:
			cash = cash.Sub(tx.Amount)
			byMonth[monthKey(tx.Date)] = byMonth[monthKey(tx.Date)].Sub(tx.Amount)
		}
	}

	savings := decimal.Zero
	for _, goal := range goals {
		savings = savings.Add(goal.CurrentAmount)
	}

	liabilities := decimal.Zero
	for _, budget := range budgets {
		for _, alloc := range budget.Allocations {
			if overrun := alloc.SpentAmount.Sub(alloc.AllocatedAmount); overrun.IsPositive() {
				liabilities = liabilities.Add(overrun)
			}
		}
	}

	assets := cash.Add(savings)
	current := NetWorthSnapshot{
		Assets:      assets.InexactFloat64(),
		Liabilities: liabilities.InexactFloat64(),
		NetWorth:    assets.Sub(liabilities).InexactFloat64(),
	}

	data := NetWorthData{Current: current}

	// Running net worth per month within the window.
	keys := sortedMonthKeys(byMonth)
	running := decimal.Zero
	for _, k := range keys {
		running = running.Add(byMonth[k])
		data.Trends = append(data.Trends, TrendPoint{Period: k, Amount: running.Add(savings).Sub(liabilities).InexactFloat64()})
	}

	if opts.ProjectionMonths > 0 {
		rate := trailingMonthlyRate(byMonth, keys)
		base := assets.Sub(liabilities)
		last := e.now()
		if len(keys) > 0 {
			// Project from the month after the last observed bucket.
			if t, err := time.Parse("2006-01", keys[len(keys)-1]); err == nil {
				last = t
			}
		}
		for i := 1; i <= opts.ProjectionMonths; i++ {
			base = base.Add(rate)
			data.Projections = append(data.Projections, TrendPoint{
				Period: monthKey(last.AddDate(0, i, 0)),
				Amount: base.InexactFloat64(),
			})
		}
	}

	meta := core.ReportMetadata{TotalRecords: len(txs) + len(goals) + len(budgets)}
	return data, meta, nil
}

// trailingMonthlyRate averages net monthly flow over the last three
// observed buckets (or fewer when the history is shorter).
func trailingMonthlyRate(byMonth map[string]decimal.Decimal, keys []string) decimal.Decimal {
	if len(keys) == 0 {
		return decimal.Zero
	}
	window := keys
	if len(window) > 3 {
		window = window[len(window)-3:]
	}
	sum := decimal.Zero
	for _, k := range window {
		sum = sum.Add(byMonth[k])
	}
	return sum.Div(decimal.NewFromInt(int64(len(window))))
}
