package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

// moneyScale is the decimal precision kept when converting NUMERIC columns.
const moneyScale = 2

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	OwnerID       string `bigquery:"owner_id"`       // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC, signed

	CategoryID   string              `bigquery:"category_id"`   // NULLABLE
	CategoryName bigquery.NullString `bigquery:"category_name"` // NULLABLE
	CategoryKind bigquery.NullString `bigquery:"category_kind"` // NULLABLE
}

type BudgetRow struct {
	BudgetID   string `bigquery:"budget_id"` // REQUIRED
	OwnerID    string `bigquery:"owner_id"`  // REQUIRED
	CategoryID string `bigquery:"category_id"`

	CategoryName bigquery.NullString `bigquery:"category_name"`

	AmountLimit *big.Rat   `bigquery:"amount_limit"` // REQUIRED NUMERIC
	PeriodStart civil.Date `bigquery:"period_start"`
	PeriodEnd   civil.Date `bigquery:"period_end"`
}

type CategoryRow struct {
	CategoryID   string `bigquery:"category_id"`
	CategoryName string `bigquery:"category_name"`
	CategoryKind string `bigquery:"category_kind"`
	IsActive     bool   `bigquery:"is_active"`
}

// ToDomain converts a row into the core transaction type. A NULL amount is
// treated as zero rather than dropped; the aggregations ignore zero rows
// naturally.
func (r *TransactionRow) ToDomain() domain.Transaction {
	return domain.Transaction{
		TransactionID: r.TransactionID,
		OwnerID:       r.OwnerID,
		Date:          r.TransactionDate.In(time.UTC),
		Amount:        ratToDecimal(r.Amount),
		CategoryID:    r.CategoryID,
		CategoryName:  r.CategoryName.StringVal,
		CategoryKind:  domain.CategoryKind(r.CategoryKind.StringVal),
	}
}

func (r *BudgetRow) ToDomain() domain.Budget {
	return domain.Budget{
		BudgetID:     r.BudgetID,
		OwnerID:      r.OwnerID,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName.StringVal,
		AmountLimit:  ratToDecimal(r.AmountLimit),
		PeriodStart:  r.PeriodStart.In(time.UTC),
		PeriodEnd:    r.PeriodEnd.In(time.UTC),
	}
}

func (r *CategoryRow) ToDomain() domain.Category {
	return domain.Category{
		CategoryID: r.CategoryID,
		Name:       r.CategoryName,
		Kind:       domain.CategoryKind(r.CategoryKind),
	}
}

func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, moneyScale)
}
