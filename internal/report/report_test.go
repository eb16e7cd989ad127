package report

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

func expense(id, name string, amount int64, date time.Time) domain.Transaction {
	return domain.Transaction{
		CategoryID:   id,
		CategoryName: name,
		CategoryKind: domain.CategoryKindExpense,
		Amount:       decimal.NewFromInt(-amount),
		Date:         date,
	}
}

func income(amount int64, date time.Time) domain.Transaction {
	return domain.Transaction{
		CategoryID:   "salary",
		CategoryName: "Salary",
		CategoryKind: domain.CategoryKindIncome,
		Amount:       decimal.NewFromInt(amount),
		Date:         date,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeCategoryBreakdown(t *testing.T) {
	month := day(2025, time.March, 1)
	txs := []domain.Transaction{
		expense("food", "Food & Beverage", 600_000, day(2025, time.March, 3)),
		expense("transport", "Transportation", 300_000, day(2025, time.March, 10)),
		expense("food", "Food & Beverage", 100_000, day(2025, time.March, 20)),
		// Outside the month, must be ignored.
		expense("food", "Food & Beverage", 9_000_000, day(2025, time.February, 27)),
		expense("food", "Food & Beverage", 9_000_000, day(2025, time.April, 1)),
		// Income kind, must be ignored by the breakdown filter.
		income(10_000_000, day(2025, time.March, 5)),
	}

	got := ComputeCategoryBreakdown(txs, month)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].CategoryName != "Food & Beverage" {
		t.Errorf("expected Food & Beverage first (largest total), got %s", got[0].CategoryName)
	}
	if !got[0].TotalAmount.Equal(decimal.NewFromInt(700_000)) {
		t.Errorf("food total = %s, want 700000", got[0].TotalAmount)
	}
	if got[0].Percentage != 70.0 || got[1].Percentage != 30.0 {
		t.Errorf("percentages = %v/%v, want 70/30", got[0].Percentage, got[1].Percentage)
	}
}

func TestComputeCategoryBreakdown_GroupsByCategoryID(t *testing.T) {
	month := day(2025, time.March, 1)
	// Two distinct categories sharing a display name must stay separate rows.
	txs := []domain.Transaction{
		expense("other-1", "Other", 600_000, day(2025, time.March, 3)),
		expense("other-2", "Other", 400_000, day(2025, time.March, 4)),
	}

	got := ComputeCategoryBreakdown(txs, month)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for 2 category IDs, got %d: %v", len(got), got)
	}
	if got[0].CategoryID != "other-1" || got[1].CategoryID != "other-2" {
		t.Errorf("IDs = %s, %s; want other-1, other-2", got[0].CategoryID, got[1].CategoryID)
	}
	if got[0].Percentage != 60.0 || got[1].Percentage != 40.0 {
		t.Errorf("percentages = %v/%v, want 60/40", got[0].Percentage, got[1].Percentage)
	}
}

func TestComputeCategoryBreakdown_PercentagesSumTo100(t *testing.T) {
	month := day(2025, time.March, 1)
	txs := []domain.Transaction{
		expense("a", "A", 333_333, day(2025, time.March, 1)),
		expense("b", "B", 333_333, day(2025, time.March, 2)),
		expense("c", "C", 333_334, day(2025, time.March, 3)),
		expense("d", "D", 123_457, day(2025, time.March, 4)),
	}

	got := ComputeCategoryBreakdown(txs, month)
	if len(got) == 0 {
		t.Fatal("expected non-empty breakdown")
	}
	sum := 0.0
	for _, b := range got {
		sum += b.Percentage
	}
	if math.Abs(sum-100.0) > 0.1 {
		t.Errorf("percentage sum = %v, want 100 +/- 0.1", sum)
	}
}

func TestComputeCategoryBreakdown_NoExpenses(t *testing.T) {
	month := day(2025, time.March, 1)
	txs := []domain.Transaction{
		income(5_000_000, day(2025, time.March, 2)),
	}

	if got := ComputeCategoryBreakdown(txs, month); len(got) != 0 {
		t.Errorf("expected empty breakdown for a month without expenses, got %v", got)
	}

	if got := ComputeCategoryBreakdown(nil, month); len(got) != 0 {
		t.Errorf("expected empty breakdown for empty history, got %v", got)
	}
}

func TestComputeMonthlyTrend(t *testing.T) {
	now := day(2025, time.June, 15)
	txs := []domain.Transaction{
		income(10_000_000, day(2025, time.April, 1)),
		expense("food", "Food", 2_000_000, day(2025, time.April, 10)),
		expense("food", "Food", 1_500_000, day(2025, time.May, 10)),
		income(9_000_000, day(2025, time.May, 1)),
		// Before the window, must be ignored.
		income(99_000_000, day(2024, time.June, 1)),
	}

	got := ComputeMonthlyTrend(txs, 6, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d: %v", len(got), got)
	}
	if got[0].MonthLabel != "4/2025" || got[1].MonthLabel != "5/2025" {
		t.Errorf("labels = %s, %s; want 4/2025, 5/2025", got[0].MonthLabel, got[1].MonthLabel)
	}
	if !got[0].TotalIncome.Equal(decimal.NewFromInt(10_000_000)) {
		t.Errorf("april income = %s", got[0].TotalIncome)
	}
	if !got[1].TotalExpense.Equal(decimal.NewFromInt(1_500_000)) {
		t.Errorf("may expense = %s", got[1].TotalExpense)
	}
}

func TestAverageSpendingLast3Months(t *testing.T) {
	now := day(2025, time.June, 15)
	txs := []domain.Transaction{
		// Only one of the three preceding months has data; divisor stays 3.
		expense("food", "Food", 900_000, day(2025, time.May, 10)),
		// Current month, excluded from history.
		expense("food", "Food", 5_000_000, day(2025, time.June, 5)),
		// Older than the window, excluded.
		expense("food", "Food", 7_000_000, day(2025, time.February, 20)),
	}

	got := AverageSpendingLast3Months(txs, now)
	avg, ok := got["food"]
	if !ok {
		t.Fatal("expected an average for category 'food'")
	}
	if !avg.Equal(decimal.NewFromInt(300_000)) {
		t.Errorf("average = %s, want 300000 (900000 / 3)", avg)
	}
}

func TestTotalsForMonth(t *testing.T) {
	month := day(2025, time.June, 1)
	txs := []domain.Transaction{
		income(8_000_000, day(2025, time.June, 1)),
		expense("food", "Food", 3_000_000, day(2025, time.June, 12)),
		expense("food", "Food", 1_000_000, day(2025, time.July, 2)), // open-ended upper bound
		income(5_000_000, day(2025, time.May, 28)),                  // before the month
	}

	if got := TotalIncomeForMonth(txs, month); !got.Equal(decimal.NewFromInt(8_000_000)) {
		t.Errorf("income = %s, want 8000000", got)
	}
	if got := TotalExpenseForMonth(txs, month); !got.Equal(decimal.NewFromInt(4_000_000)) {
		t.Errorf("expense = %s, want 4000000", got)
	}
}

func TestCurrentMonthSpend(t *testing.T) {
	now := day(2025, time.June, 20)
	txs := []domain.Transaction{
		expense("food", "Food", 2_000_000, day(2025, time.June, 2)),
		expense("transport", "Transport", 500_000, day(2025, time.June, 5)),
		expense("food", "Food", 1_000_000, day(2025, time.June, 9)),
		expense("food", "Food", 4_000_000, day(2025, time.May, 30)), // previous month
		income(10_000_000, day(2025, time.June, 1)),
	}

	got := CurrentMonthSpend(txs, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].CategoryID != "food" || !got[0].Total.Equal(decimal.NewFromInt(3_000_000)) {
		t.Errorf("first group = %s/%s, want food/3000000", got[0].CategoryID, got[0].Total)
	}
	if got[1].CategoryID != "transport" || !got[1].Total.Equal(decimal.NewFromInt(500_000)) {
		t.Errorf("second group = %s/%s, want transport/500000", got[1].CategoryID, got[1].Total)
	}
}
