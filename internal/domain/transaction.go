package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryKind distinguishes income categories from expense categories.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "INCOME"
	CategoryKindExpense CategoryKind = "EXPENSE"
)

// Transaction is one ledger entry as supplied by the store, read-only to
// this core. The sign of Amount is the sole source of truth for
// income/expense classification: negative amounts are expenses, positive
// amounts are income. CategoryKind is consulted only when filtering the
// category breakdown.
type Transaction struct {
	TransactionID string
	OwnerID       string

	Date   time.Time
	Amount decimal.Decimal

	CategoryID   string
	CategoryName string
	CategoryKind CategoryKind
}

// IsExpense reports whether the transaction is an expense by amount sign.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// AbsAmount returns the magnitude of the transaction amount.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}
