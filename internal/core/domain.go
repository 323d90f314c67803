package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
)

type (
	TransactionType string
	CategoryType    string
	GoalStatus      string

	// Transaction is a single money movement. Amount is always non-negative;
	// direction is carried by Type.
	Transaction struct {
		ID          string
		UserID      string
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  string
		Date        time.Time
		Description string
	}

	Category struct {
		ID     string
		UserID string
		Name   string
		Type   CategoryType
		Color  string
	}

	// CategoryAllocation is one budget line. SpentAmount is derived state:
	// the analytics engine recomputes it from matching transactions and is
	// the only writer.
	CategoryAllocation struct {
		CategoryID      string
		AllocatedAmount decimal.Decimal
		SpentAmount     decimal.Decimal
	}

	Budget struct {
		ID          string
		UserID      string
		Name        string
		TotalAmount decimal.Decimal
		Period      string
		StartDate   time.Time
		EndDate     time.Time
		Allocations []CategoryAllocation
	}

	Goal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		TargetDate    time.Time
		Status        GoalStatus
	}
)

var (
	ErrEmptyUserID   = errors.New("empty user id")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyReportID = errors.New("empty report id")
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// TotalAllocated sums the allocated amounts across all budget lines.
func (b Budget) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range b.Allocations {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

// TotalSpent sums the recomputed spent amounts across all budget lines.
func (b Budget) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, a := range b.Allocations {
		total = total.Add(a.SpentAmount)
	}
	return total
}

// ActiveWithin reports whether the budget period overlaps the given window.
func (b Budget) ActiveWithin(w DateWindow) bool {
	if !w.End.IsZero() && b.StartDate.After(w.End) {
		return false
	}
	if !w.Start.IsZero() && b.EndDate.Before(w.Start) {
		return false
	}
	return true
}

// Progress returns goal completion as a percentage of the target.
// Zero targets yield zero rather than dividing by zero.
func (g Goal) Progress() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	return p
}

// DaysRemaining returns whole days until the target date, negative when past due.
func (g Goal) DaysRemaining(now time.Time) int {
	return int(g.TargetDate.Sub(now).Hours() / 24)
}
