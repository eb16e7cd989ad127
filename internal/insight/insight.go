// Package insight turns aggregated spending data into typed insight items and
// a narrative analysis report. It performs no I/O: every input is fetched by
// the caller and passed in, so the rules are testable without a store.
package insight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

// Type classifies an insight item.
type Type string

const (
	TypeInfo     Type = "info"
	TypeWarning  Type = "warning"
	TypeCritical Type = "critical"
	TypePraise   Type = "praise"
)

// Item is one generated observation about spending behavior. Items are
// immutable values created only by GenerateReport.
type Item struct {
	Type                Type   `json:"type"`
	Title               string `json:"title"`
	Message             string `json:"message"`
	RelatedCategoryName string `json:"relatedCategoryName,omitempty"`
}

// Report is the engine's sole external output.
type Report struct {
	AnalysisText       string `json:"analysisText"`
	RecommendationText string `json:"recommendationText"`
	Details            []Item `json:"details"`
}

// Inputs carries everything the rule engine needs. History maps category ID
// to the three-month average spend for that category.
type Inputs struct {
	History      map[string]decimal.Decimal
	CurrentSpend []domain.CategorySpend
	Budgets      []domain.Budget
	Income       decimal.Decimal
	TotalExpense decimal.Decimal
}

// Rule thresholds carried over from the original engine.
var (
	anomalyFactor = decimal.RequireFromString("1.2")
	trendFactor   = decimal.RequireFromString("1.1")
	savingsFactor = decimal.RequireFromString("0.5")
)

// GenerateReport applies the anomaly and budget rules and composes the
// analysis and recommendation narratives. Rules are independent; one
// transaction set can trigger several insights, and a missing precondition
// (no history, no budgets) simply omits that rule's items.
func GenerateReport(in Inputs) Report {
	var details []Item
	details = append(details, anomalyInsights(in)...)
	details = append(details, budgetInsights(in)...)

	return Report{
		AnalysisText:       composeAnalysis(in),
		RecommendationText: composeRecommendation(in),
		Details:            details,
	}
}

// anomalyInsights warns on categories running more than 20% above their
// three-month average. The boundary is strict: exactly average*1.2 does not
// trigger.
func anomalyInsights(in Inputs) []Item {
	var items []Item
	for _, spend := range in.CurrentSpend {
		avg, ok := in.History[spend.CategoryID]
		if !ok || !avg.IsPositive() {
			continue
		}
		if !spend.Total.GreaterThan(avg.Mul(anomalyFactor)) {
			continue
		}
		percent := spend.Total.Sub(avg).Div(avg).Mul(decimal.NewFromInt(100)).IntPart()
		items = append(items, Item{
			Type:  TypeWarning,
			Title: "Unusual spending",
			Message: fmt.Sprintf("You spent %d%% more on %s than your average over the last 3 months.",
				percent, spend.CategoryName),
			RelatedCategoryName: spend.CategoryName,
		})
	}
	return items
}

// budgetInsights flags every budget whose category spend reached the limit.
// The boundary is inclusive: spend equal to the limit triggers.
func budgetInsights(in Inputs) []Item {
	var items []Item
	for _, budget := range in.Budgets {
		spent := decimal.Zero
		for _, spend := range in.CurrentSpend {
			if spend.CategoryID == budget.CategoryID {
				spent = spend.Total
				break
			}
		}
		if spent.LessThan(budget.AmountLimit) {
			continue
		}
		items = append(items, Item{
			Type:  TypeCritical,
			Title: "Budget exceeded",
			Message: fmt.Sprintf("You have spent past the budget limit for %s.",
				budget.CategoryName),
			RelatedCategoryName: budget.CategoryName,
		})
	}
	return items
}

func composeAnalysis(in Inputs) string {
	balance := in.Income.Sub(in.TotalExpense)

	text := fmt.Sprintf("Total income this month is %s and total spending is %s, ",
		FormatCurrency(in.Income), FormatCurrency(in.TotalExpense))

	if balance.Sign() >= 0 {
		text += fmt.Sprintf("leaving a surplus of %s. ", FormatCurrency(balance))
		text += "You are keeping a healthy balance this month. "
	} else {
		text += fmt.Sprintf("resulting in a deficit of %s. ", FormatCurrency(balance.Abs()))
		text += "This trend shows spending outpacing income. "
	}

	histTotal := decimal.Zero
	for _, avg := range in.History {
		histTotal = histTotal.Add(avg)
	}
	if histTotal.IsPositive() && in.TotalExpense.GreaterThan(histTotal.Mul(trendFactor)) {
		text += "Spending is trending above your historical average, pointing to heavier consumption toward the end of the period."
	}

	return text
}

func composeRecommendation(in Inputs) string {
	balance := in.Income.Sub(in.TotalExpense)

	if balance.Sign() < 0 {
		text := "Try to cap spending at 80-85% of your total income. "
		text += "Tracking and categorizing expenses regularly is essential to spot the wasteful ones. "
		if top, ok := topSpendCategory(in.CurrentSpend); ok {
			text += fmt.Sprintf("Consider cutting back on '%s', the most expensive category this month. ", top.CategoryName)
		}
		return text
	}

	if in.Income.IsPositive() && in.TotalExpense.LessThan(in.Income.Mul(savingsFactor)) {
		return "Well done! You saved a large share of your income this month. " +
			"Consider directing the surplus into an emergency fund (3-6 months of living costs) or income-producing assets."
	}

	return "Keep up your current spending habits. " +
		"Automated tracking tools will help you follow trends and make smarter decisions."
}

func topSpendCategory(spend []domain.CategorySpend) (domain.CategorySpend, bool) {
	if len(spend) == 0 {
		return domain.CategorySpend{}, false
	}
	top := spend[0]
	for _, s := range spend[1:] {
		if s.Total.GreaterThan(top.Total) {
			top = s
		}
	}
	return top, true
}
