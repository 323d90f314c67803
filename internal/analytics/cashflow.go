package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// Trend classifications for the cash-flow pattern block.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendTolerance is the absolute net-cash-flow delta below which the first
// and last buckets are considered equivalent.
var trendTolerance = decimal.NewFromFloat(0.01)

// CashFlowData is the cash-flow report payload.
type CashFlowData struct {
	Summary  CashFlowSummary  `json:"summary"`
	Monthly  []MonthCashFlow  `json:"monthly"`
	Patterns CashFlowPatterns `json:"patterns"`
}

type CashFlowSummary struct {
	TotalIncome        float64 `json:"totalIncome"`
	TotalExpenses      float64 `json:"totalExpenses"`
	NetCashFlow        float64 `json:"netCashFlow"`
	AverageNetCashFlow float64 `json:"averageNetCashFlow"`
	AverageSavingsRate float64 `json:"averageSavingsRate"`
}

// MonthCashFlow is one calendar-month bucket. SavingsRate is signed and
// deliberately unclamped; it is 0 whenever income is 0.
type MonthCashFlow struct {
	Period      string  `json:"period"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	NetCashFlow float64 `json:"netCashFlow"`
	SavingsRate float64 `json:"savingsRate"`
}

type CashFlowPatterns struct {
	Trend string `json:"trend"`
}

// CashFlowReport buckets transactions by calendar month and derives net
// cash flow and savings rate per bucket. Transfers are excluded: they move
// money between the user's own accounts.
func (e *Engine) CashFlowReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (CashFlowData, core.ReportMetadata, error) {
	txs, err := e.transactions.Find(ctx, userID, TransactionFilter{
		From: window.Start,
		To:   window.End,
	})
	if err != nil {
		return CashFlowData{}, core.ReportMetadata{}, fmt.Errorf("find transactions: %w", err)
	}

	type bucket struct {
		income   decimal.Decimal
		expenses decimal.Decimal
	}
	byMonth := make(map[string]*bucket)
	counted := 0
	for _, tx := range txs {
		if tx.Type == core.TransactionTransfer {
			continue
		}
		b := byMonth[monthKey(tx.Date)]
		if b == nil {
			b = &bucket{income: decimal.Zero, expenses: decimal.Zero}
			byMonth[monthKey(tx.Date)] = b
		}
		switch tx.Type {
		case core.TransactionIncome:
			b.income = b.income.Add(tx.Amount)
		case core.TransactionExpense:
			b.expenses = b.expenses.Add(tx.Amount)
		}
		counted++
	}

	var (
		monthly       []MonthCashFlow
		totalIncome   = decimal.Zero
		totalExpenses = decimal.Zero
		sumNet        = decimal.Zero
		sumRate       float64
	)
	for _, k := range sortedMonthKeys(byMonth) {
		b := byMonth[k]
		net := b.income.Sub(b.expenses)
		rate := SavingsRate(b.income, b.expenses)
		monthly = append(monthly, MonthCashFlow{
			Period:      k,
			Income:      b.income.InexactFloat64(),
			Expenses:    b.expenses.InexactFloat64(),
			NetCashFlow: net.InexactFloat64(),
			SavingsRate: rate,
		})
		totalIncome = totalIncome.Add(b.income)
		totalExpenses = totalExpenses.Add(b.expenses)
		sumNet = sumNet.Add(net)
		sumRate += rate
	}

	summary := CashFlowSummary{
		TotalIncome:   totalIncome.InexactFloat64(),
		TotalExpenses: totalExpenses.InexactFloat64(),
		NetCashFlow:   totalIncome.Sub(totalExpenses).InexactFloat64(),
	}
	if n := len(monthly); n > 0 {
		avg, _ := sumNet.Div(decimal.NewFromInt(int64(n))).Round(2).Float64()
		summary.AverageNetCashFlow = avg
		summary.AverageSavingsRate = round2(sumRate / float64(n))
	}

	data := CashFlowData{
		Summary:  summary,
		Monthly:  monthly,
		Patterns: CashFlowPatterns{Trend: classifyTrend(monthly)},
	}
	meta := core.ReportMetadata{TotalRecords: counted}
	return data, meta, nil
}

// SavingsRate is (income - expenses) / income * 100, signed and unclamped.
// It is 0 when income is 0 so the division is never undefined.
func SavingsRate(income, expenses decimal.Decimal) float64 {
	if income.IsZero() {
		return 0
	}
	rate, _ := income.Sub(expenses).Div(income).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return rate
}

// classifyTrend compares the first and last bucket's net cash flow beyond a
// small tolerance.
func classifyTrend(monthly []MonthCashFlow) string {
	if len(monthly) < 2 {
		return TrendStable
	}
	first := decimal.NewFromFloat(monthly[0].NetCashFlow)
	last := decimal.NewFromFloat(monthly[len(monthly)-1].NetCashFlow)
	delta := last.Sub(first)
	switch {
	case delta.GreaterThan(trendTolerance):
		return TrendIncreasing
	case delta.LessThan(trendTolerance.Neg()):
		return TrendDecreasing
	default:
		return TrendStable
	}
}
