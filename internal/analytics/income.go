package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// IncomeData is the income report payload. Sources are income categories.
type IncomeData struct {
	Summary        IncomeSummary      `json:"summary"`
	SourceAnalysis []CategoryAnalysis `json:"sourceAnalysis"`
	Analysis       IncomeAnalysis     `json:"analysis"`
	Trends         []TrendPoint       `json:"trends,omitempty"`
	Transactions   []TransactionLine  `json:"transactions,omitempty"`
}

type IncomeSummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalEntries int     `json:"totalEntries"`
}

type IncomeAnalysis struct {
	// GrowthRate is the percent change of the latest month bucket against
	// the prior one. Zero when fewer than two buckets exist.
	GrowthRate float64 `json:"growthRate"`
	// DiversificationScore is 1 minus the Herfindahl index over source
	// shares: 0 for a single source, approaching 1 as income spreads out.
	DiversificationScore float64 `json:"diversificationScore"`
}

// IncomeReport groups income transactions by source category and derives
// growth and concentration measures.
func (e *Engine) IncomeReport(ctx context.Context, userID string, window core.DateWindow, opts Options) (IncomeData, core.ReportMetadata, error) {
	txs, err := e.transactions.Find(ctx, userID, TransactionFilter{
		Type: core.TransactionIncome,
		From: window.Start,
		To:   window.End,
	})
	if err != nil {
		return IncomeData{}, core.ReportMetadata{}, fmt.Errorf("find income transactions: %w", err)
	}

	type bucket struct {
		total decimal.Decimal
		count int
	}
	bySource := make(map[string]*bucket)
	byMonth := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, tx := range txs {
		b := bySource[tx.CategoryID]
		if b == nil {
			b = &bucket{total: decimal.Zero}
			bySource[tx.CategoryID] = b
		}
		b.total = b.total.Add(tx.Amount)
		b.count++
		total = total.Add(tx.Amount)
		byMonth[monthKey(tx.Date)] = byMonth[monthKey(tx.Date)].Add(tx.Amount)
	}

	analysis := make([]CategoryAnalysis, 0, len(bySource))
	for sourceID, b := range bySource {
		name, color := e.categoryLabel(ctx, sourceID)
		percentage := 0.0
		if total.IsPositive() {
			percentage, _ = b.total.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		analysis = append(analysis, CategoryAnalysis{
			CategoryID:       sourceID,
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

	sourceTotals := make([]decimal.Decimal, 0, len(bySource))
	for _, b := range bySource {
		sourceTotals = append(sourceTotals, b.total)
	}

	data := IncomeData{
		Summary: IncomeSummary{
			TotalIncome:  total.InexactFloat64(),
			TotalEntries: len(txs),
		},
		SourceAnalysis: analysis,
		Analysis: IncomeAnalysis{
			GrowthRate:           incomeGrowthRate(byMonth),
			DiversificationScore: diversificationScore(sourceTotals, total),
		},
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
		Categories:   categoryIDs(bySource),
	}
	return data, meta, nil
}

// incomeGrowthRate compares the latest month bucket with the prior one.
func incomeGrowthRate(byMonth map[string]decimal.Decimal) float64 {
	keys := sortedMonthKeys(byMonth)
	if len(keys) < 2 {
		return 0
	}
	prior := byMonth[keys[len(keys)-2]]
	latest := byMonth[keys[len(keys)-1]]
	if !prior.IsPositive() {
		return 0
	}
	rate, _ := latest.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return rate
}

// diversificationScore is 1 - Herfindahl index over source shares.
func diversificationScore(totals []decimal.Decimal, grand decimal.Decimal) float64 {
	if len(totals) == 0 || !grand.IsPositive() {
		return 0
	}
	herfindahl := 0.0
	for _, t := range totals {
		share, _ := t.Div(grand).Float64()
		herfindahl += share * share
	}
	score := 1 - herfindahl
	if score < 0 {
		score = 0
	}
	return round2(score)
}
