package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func TestSavingsRate(t *testing.T) {
	tests := []struct {
		name     string
		income   string
		expenses string
		want     float64
	}{
		{"positive", "1000", "850", 15},
		{"zero income", "0", "500", 0},
		{"negative allowed", "1000", "1200", -20},
		{"full savings", "1000", "0", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SavingsRate(dec(tt.income), dec(tt.expenses))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCashFlowReport_MonthlyBuckets(t *testing.T) {
	txStore := &fakeTransactionStore{txs: []core.Transaction{
		{ID: "t1", UserID: "user-1", Amount: dec("1000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 5, 1)},
		{ID: "t2", UserID: "user-1", Amount: dec("850"), Type: core.TransactionExpense, CategoryID: "rent", Date: day(2025, 5, 10)},
		{ID: "t3", UserID: "user-1", Amount: dec("1000"), Type: core.TransactionIncome, CategoryID: "salary", Date: day(2025, 6, 1)},
		{ID: "t4", UserID: "user-1", Amount: dec("600"), Type: core.TransactionExpense, CategoryID: "rent", Date: day(2025, 6, 5)},
		// Transfers never count as income or spending.
		{ID: "t5", UserID: "user-1", Amount: dec("5000"), Type: core.TransactionTransfer, Date: day(2025, 6, 6)},
	}}
	e := newTestEngine(txStore, nil, nil, nil)

	data, meta, err := e.CashFlowReport(context.Background(), "user-1", core.DateWindow{}, Options{})
	require.NoError(t, err)

	require.Len(t, data.Monthly, 2)
	assert.Equal(t, "2025-05", data.Monthly[0].Period)
	assert.Equal(t, 150.0, data.Monthly[0].NetCashFlow)
	assert.Equal(t, 15.0, data.Monthly[0].SavingsRate)
	assert.Equal(t, "2025-06", data.Monthly[1].Period)
	assert.Equal(t, 400.0, data.Monthly[1].NetCashFlow)
	assert.Equal(t, 40.0, data.Monthly[1].SavingsRate)

	assert.Equal(t, 2000.0, data.Summary.TotalIncome)
	assert.Equal(t, 1450.0, data.Summary.TotalExpenses)
	assert.Equal(t, 550.0, data.Summary.NetCashFlow)
	assert.Equal(t, 275.0, data.Summary.AverageNetCashFlow)
	assert.Equal(t, 27.5, data.Summary.AverageSavingsRate)

	assert.Equal(t, TrendIncreasing, data.Patterns.Trend)
	assert.Equal(t, 4, meta.TotalRecords, "transfer excluded from record count")
}

func TestCashFlowReport_Empty(t *testing.T) {
	e := newTestEngine(&fakeTransactionStore{}, nil, nil, nil)

	data, meta, err := e.CashFlowReport(context.Background(), "user-1", core.DateWindow{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, data.Monthly)
	assert.Zero(t, data.Summary.TotalIncome)
	assert.Zero(t, data.Summary.AverageSavingsRate)
	assert.Equal(t, TrendStable, data.Patterns.Trend)
	assert.Zero(t, meta.TotalRecords)
}

func TestClassifyTrend(t *testing.T) {
	mk := func(nets ...float64) []MonthCashFlow {
		out := make([]MonthCashFlow, len(nets))
		for i, n := range nets {
			out[i] = MonthCashFlow{NetCashFlow: n}
		}
		return out
	}

	assert.Equal(t, TrendStable, classifyTrend(mk(100)))
	assert.Equal(t, TrendIncreasing, classifyTrend(mk(100, 50, 200)))
	assert.Equal(t, TrendDecreasing, classifyTrend(mk(200, 300, 100)))
	// Within tolerance reads as stable.
	assert.Equal(t, TrendStable, classifyTrend(mk(100, 100.005)))
}
