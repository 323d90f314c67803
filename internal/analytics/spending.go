package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// SpendingData is the spending report payload.
type SpendingData struct {
	Summary          SpendingSummary    `json:"summary"`
	CategoryAnalysis []CategoryAnalysis `json:"categoryAnalysis"`
	Trends           []TrendPoint       `json:"trends,omitempty"`
	Transactions     []TransactionLine  `json:"transactions,omitempty"`
}

type SpendingSummary struct {
	TotalSpending float64 `json:"totalSpending"`
	TotalExpenses int     `json:"totalExpenses"`
}

// CategoryAnalysis is one row of a per-category breakdown, sorted
// descending by amount.
type CategoryAnalysis struct {
	CategoryID       string  `json:"categoryId"`
	CategoryName     string  `json:"categoryName"`
	CategoryColor    string  `json:"categoryColor,omitempty"`
	TotalAmount      float64 `json:"totalAmount"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int     `json:"transactionCount"`
}

// TrendPoint is one time bucket of a trend series.
type TrendPoint struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// TransactionLine is a single transaction in a detail array.
type TransactionLine struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	Description string  `json:"description,omitempty"`
}

// SpendingReport groups expense transactions by category within the window.
func (e *Engine) SpendingReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (SpendingData, core.ReportMetadata, error) {
	txs, err := e.transactions.Find(ctx, userID, TransactionFilter{
		Type: core.TransactionExpense,
		From: window.Start,
		To:   window.End,
	})
	if err != nil {
		return SpendingData{}, core.ReportMetadata{}, fmt.Errorf("find expense transactions: %w", err)
	}

	type bucket struct {
		total decimal.Decimal
		count int
	}
	byCategory := make(map[string]*bucket)
	byMonth := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, tx := range txs {
		b := byCategory[tx.CategoryID]
		if b == nil {
			b = &bucket{total: decimal.Zero}
			byCategory[tx.CategoryID] = b
		}
		b.total = b.total.Add(tx.Amount)
		b.count++
		total = total.Add(tx.Amount)
		byMonth[monthKey(tx.Date)] = byMonth[monthKey(tx.Date)].Add(tx.Amount)
	}

	analysis := make([]CategoryAnalysis, 0, len(byCategory))
	for categoryID, b := range byCategory {
		name, color := e.categoryLabel(ctx, categoryID)
		percentage := 0.0
		if total.IsPositive() {
			percentage, _ = b.total.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		analysis = append(analysis, CategoryAnalysis{
			CategoryID:       categoryID,
			CategoryName:     name,
			CategoryColor:    color,
			TotalAmount:      b.total.InexactFloat64(),
			Percentage:       percentage,
			TransactionCount: b.count,
		})
	}
	sort.Slice(analysis, func(i, j int) bool {
		if analysis[i].TotalAmount != analysis[j].TotalAmount {
			return analysis[i].TotalAmount > analysis[j].TotalAmount
		}
		return analysis[i].CategoryID < analysis[j].CategoryID
	})
	if opts.Limit > 0 && len(analysis) > opts.Limit {
		analysis = analysis[:opts.Limit]
	}

	data := SpendingData{
		Summary: SpendingSummary{
			TotalSpending: total.InexactFloat64(),
			TotalExpenses: len(txs),
		},
		CategoryAnalysis: analysis,
	}

	if opts.IncludeCharts {
		for _, k := range sortedMonthKeys(byMonth) {
			data.Trends = append(data.Trends, TrendPoint{Period: k, Amount: byMonth[k].InexactFloat64()})
		}
	}
	if opts.IncludeTransactionDetails {
		data.Transactions = transactionLines(txs)
	}

	meta := core.ReportMetadata{
		TotalRecords: len(txs),
		Categories:   categoryIDs(byCategory),
	}
	return data, meta, nil
}

func transactionLines(txs []core.Transaction) []TransactionLine {
	lines := make([]TransactionLine, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, TransactionLine{
			ID:          tx.ID,
			Date:        tx.Date.Format("2006-01-02"),
			Amount:      tx.Amount.InexactFloat64(),
			CategoryID:  tx.CategoryID,
			Description: tx.Description,
		})
	}
	return lines
}

func categoryIDs[V any](byCategory map[string]V) []string {
	ids := make([]string, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
