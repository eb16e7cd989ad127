package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

func TestTransactionRowToDomain(t *testing.T) {
	row := TransactionRow{
		TransactionID:   "tx-1",
		OwnerID:         "owner-1",
		TransactionDate: civil.Date{Year: 2025, Month: time.May, Day: 14},
		Amount:          big.NewRat(-325000, 1),
		CategoryID:      "cat-food",
		CategoryName:    bigquery.NullString{StringVal: "Food & Beverage", Valid: true},
		CategoryKind:    bigquery.NullString{StringVal: "EXPENSE", Valid: true},
	}

	tx := row.ToDomain()
	if !tx.Amount.Equal(decimal.NewFromInt(-325000)) {
		t.Errorf("Amount = %s, want -325000", tx.Amount)
	}
	if !tx.IsExpense() {
		t.Error("negative amount must classify as expense")
	}
	if want := time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC); !tx.Date.Equal(want) {
		t.Errorf("Date = %s, want %s", tx.Date, want)
	}
	if tx.CategoryKind != domain.CategoryKindExpense {
		t.Errorf("CategoryKind = %q", tx.CategoryKind)
	}
}

func TestTransactionRowToDomain_NullAmount(t *testing.T) {
	row := TransactionRow{TransactionID: "tx-2", TransactionDate: civil.Date{Year: 2025, Month: 1, Day: 1}}

	if tx := row.ToDomain(); !tx.Amount.IsZero() {
		t.Errorf("NULL amount should convert to zero, got %s", tx.Amount)
	}
}

func TestBudgetRowToDomain(t *testing.T) {
	row := BudgetRow{
		BudgetID:     "b-1",
		OwnerID:      "owner-1",
		CategoryID:   "cat-food",
		CategoryName: bigquery.NullString{StringVal: "Food & Beverage", Valid: true},
		AmountLimit:  big.NewRat(5_000_000, 1),
		PeriodStart:  civil.Date{Year: 2025, Month: 5, Day: 1},
		PeriodEnd:    civil.Date{Year: 2025, Month: 5, Day: 31},
	}

	b := row.ToDomain()
	if !b.AmountLimit.Equal(decimal.NewFromInt(5_000_000)) {
		t.Errorf("AmountLimit = %s", b.AmountLimit)
	}
	if b.CategoryName != "Food & Beverage" {
		t.Errorf("CategoryName = %q", b.CategoryName)
	}
}

func TestRatToDecimal_FractionalNumeric(t *testing.T) {
	// NUMERIC columns can carry fractions; conversion keeps two places.
	got := ratToDecimal(big.NewRat(123455, 100))
	if want := decimal.RequireFromString("1234.55"); !got.Equal(want) {
		t.Errorf("ratToDecimal = %s, want %s", got, want)
	}
}
