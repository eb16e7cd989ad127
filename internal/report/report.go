// Package report computes aggregated views of a user's transaction history:
// category breakdowns, monthly income/expense trends and rolling historical
// averages. Every function here is a pure function over the slice it is
// given; callers own the fetching and the owner filtering.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

// CategoryBreakdown is one category's share of a month's expense total.
type CategoryBreakdown struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Percentage   float64         `json:"percentage"`
}

// MonthlyTrend is one calendar month's income and expense totals.
type MonthlyTrend struct {
	MonthLabel   string          `json:"monthLabel"` // "M/YYYY"
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}

// ComputeCategoryBreakdown groups expense-kind transactions of the given
// calendar month by category ID and returns each category's absolute total
// and its share of the month's grand total, ordered by total descending.
// A month with no expense activity yields an empty slice.
func ComputeCategoryBreakdown(txs []domain.Transaction, month time.Time) []CategoryBreakdown {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	type group struct {
		id    string
		name  string
		total decimal.Decimal
	}

	var order []string
	groups := make(map[string]*group)
	grand := decimal.Zero

	for _, t := range txs {
		if t.CategoryKind != domain.CategoryKindExpense {
			continue
		}
		if t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		abs := t.AbsAmount()
		g, ok := groups[t.CategoryID]
		if !ok {
			g = &group{id: t.CategoryID, name: t.CategoryName}
			groups[t.CategoryID] = g
			order = append(order, t.CategoryID)
		}
		g.total = g.total.Add(abs)
		grand = grand.Add(abs)
	}

	if grand.IsZero() {
		return nil
	}

	result := make([]CategoryBreakdown, 0, len(order))
	hundred := decimal.NewFromInt(100)
	for _, id := range order {
		g := groups[id]
		pct, _ := g.total.Div(grand).Mul(hundred).Round(2).Float64()
		result = append(result, CategoryBreakdown{
			CategoryID:   g.id,
			CategoryName: g.name,
			TotalAmount:  g.total,
			Percentage:   pct,
		})
	}

	// Descending by total; first-seen grouping order breaks ties.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalAmount.GreaterThan(result[j].TotalAmount)
	})

	return result
}

// ComputeMonthlyTrend returns per-month income and expense totals for every
// calendar month with activity since now minus lastMonths, ordered ascending
// by (year, month). Income is the sum of positive amounts, expense the sum of
// absolute negative amounts.
func ComputeMonthlyTrend(txs []domain.Transaction, lastMonths int, now time.Time) []MonthlyTrend {
	since := now.AddDate(0, -lastMonths, 0)

	type key struct {
		year  int
		month time.Month
	}
	type totals struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}

	buckets := make(map[key]*totals)
	for _, t := range txs {
		if t.Date.Before(since) {
			continue
		}
		k := key{year: t.Date.Year(), month: t.Date.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &totals{}
			buckets[k] = b
		}
		if t.Amount.IsPositive() {
			b.income = b.income.Add(t.Amount)
		} else if t.Amount.IsNegative() {
			b.expense = b.expense.Add(t.Amount.Abs())
		}
	}

	keys := make([]key, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	result := make([]MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		result = append(result, MonthlyTrend{
			MonthLabel:   fmt.Sprintf("%d/%d", int(k.month), k.year),
			TotalIncome:  b.income,
			TotalExpense: b.expense,
		})
	}
	return result
}

// AverageSpendingLast3Months returns, per category ID, the flat three-month
// average of absolute expense amounts over the three full calendar months
// preceding the current month. The divisor is always 3 regardless of how many
// of those months had activity.
func AverageSpendingLast3Months(txs []domain.Transaction, now time.Time) map[string]decimal.Decimal {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := monthStart.AddDate(0, -3, 0)

	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		if t.Date.Before(windowStart) || !t.Date.Before(monthStart) {
			continue
		}
		totals[t.CategoryID] = totals[t.CategoryID].Add(t.Amount.Abs())
	}

	three := decimal.NewFromInt(3)
	averages := make(map[string]decimal.Decimal, len(totals))
	for id, total := range totals {
		averages[id] = total.Div(three)
	}
	return averages
}

// TotalIncomeForMonth sums positive amounts from the first day of the given
// month onward, open-ended toward "now".
func TotalIncomeForMonth(txs []domain.Transaction, month time.Time) decimal.Decimal {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	total := decimal.Zero
	for _, t := range txs {
		if t.Date.Before(start) || !t.Amount.IsPositive() {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// TotalExpenseForMonth sums absolute negative amounts from the first day of
// the given month onward, open-ended toward "now".
func TotalExpenseForMonth(txs []domain.Transaction, month time.Time) decimal.Decimal {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	total := decimal.Zero
	for _, t := range txs {
		if t.Date.Before(start) || !t.Amount.IsNegative() {
			continue
		}
		total = total.Add(t.Amount.Abs())
	}
	return total
}

// CurrentMonthSpend groups this month's expenses (sign-based) by category and
// returns absolute totals in first-seen order. It feeds the insight engine's
// anomaly and budget rules.
func CurrentMonthSpend(txs []domain.Transaction, now time.Time) []domain.CategorySpend {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var order []string
	groups := make(map[string]*domain.CategorySpend)
	for _, t := range txs {
		if t.Date.Before(start) || !t.Amount.IsNegative() {
			continue
		}
		g, ok := groups[t.CategoryID]
		if !ok {
			g = &domain.CategorySpend{CategoryID: t.CategoryID, CategoryName: t.CategoryName}
			groups[t.CategoryID] = g
			order = append(order, t.CategoryID)
		}
		g.Total = g.Total.Add(t.Amount.Abs())
	}

	result := make([]domain.CategorySpend, 0, len(order))
	for _, id := range order {
		result = append(result, *groups[id])
	}
	return result
}
