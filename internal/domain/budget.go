package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a per-category spending limit owned by a user. The store supplies
// budgets read-only; the insight engine compares current-month spend against
// AmountLimit.
type Budget struct {
	BudgetID   string
	OwnerID    string
	CategoryID string

	CategoryName string

	AmountLimit decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// CategorySpend is the per-category expense total of a single month,
// produced per request and discarded after the caller consumes it.
type CategorySpend struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
}
