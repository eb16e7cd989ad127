// Package analysis is the service layer over the ledger: it fetches an
// owner's data and runs the report, insight and forecast engines over it.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tdnguyen/moneymanager/internal/domain"
	"github.com/tdnguyen/moneymanager/internal/forecast"
	"github.com/tdnguyen/moneymanager/internal/insight"
	"github.com/tdnguyen/moneymanager/internal/report"
)

// forecastWindowDays is how much daily history feeds the forecaster.
const forecastWindowDays = 90

// Store is the ledger surface this service reads. One call fetches, then the
// pure engines run over the result; the service never writes.
type Store interface {
	ListTransactionsByOwner(ctx context.Context, ownerID string, since time.Time) ([]domain.Transaction, error)
	ListBudgetsByOwner(ctx context.Context, ownerID string) ([]domain.Budget, error)
}

// Service answers the analysis queries for one owner at a time.
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// CategoryBreakdown returns the expense breakdown of the given calendar
// month.
func (s *Service) CategoryBreakdown(ctx context.Context, ownerID string, month time.Time) ([]report.CategoryBreakdown, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID, start)
	if err != nil {
		return nil, fmt.Errorf("CategoryBreakdown: %w", err)
	}

	breakdown := report.ComputeCategoryBreakdown(txs, start)
	s.log.Debug().Str("owner_id", ownerID).Str("month", start.Format("2006-01")).
		Int("categories", len(breakdown)).Msg("computed category breakdown")
	return breakdown, nil
}

// MonthlyTrend returns per-month income and expense totals over the last
// lastMonths months.
func (s *Service) MonthlyTrend(ctx context.Context, ownerID string, lastMonths int) ([]report.MonthlyTrend, error) {
	if lastMonths <= 0 {
		return nil, fmt.Errorf("MonthlyTrend: lastMonths must be positive, got %d", lastMonths)
	}
	now := s.now().UTC()
	since := now.AddDate(0, -lastMonths, 0)

	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTrend: %w", err)
	}
	return report.ComputeMonthlyTrend(txs, lastMonths, now), nil
}

// AnalysisReport builds the full insight report for the current month. Data
// is fetched once; the anomaly, budget and narrative rules all run over the
// same snapshot.
func (s *Service) AnalysisReport(ctx context.Context, ownerID string) (insight.Report, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	since := monthStart.AddDate(0, -3, 0)

	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID, since)
	if err != nil {
		return insight.Report{}, fmt.Errorf("AnalysisReport: transactions: %w", err)
	}
	budgets, err := s.store.ListBudgetsByOwner(ctx, ownerID)
	if err != nil {
		return insight.Report{}, fmt.Errorf("AnalysisReport: budgets: %w", err)
	}

	rep := insight.GenerateReport(insight.Inputs{
		History:      report.AverageSpendingLast3Months(txs, now),
		CurrentSpend: report.CurrentMonthSpend(txs, now),
		Budgets:      budgets,
		Income:       report.TotalIncomeForMonth(txs, now),
		TotalExpense: report.TotalExpenseForMonth(txs, now),
	})

	s.log.Info().Str("owner_id", ownerID).Int("details", len(rep.Details)).
		Msg("generated analysis report")
	return rep, nil
}

// ForecastNextWeek predicts the next seven days of spending from the last 90
// days. A series the forecaster cannot fit yields an empty forecast, not an
// error.
func (s *Service) ForecastNextWeek(ctx context.Context, ownerID string) ([]forecast.Point, error) {
	now := s.now().UTC()
	// Today's spending is incomplete, so the series ends yesterday.
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(forecastWindowDays - 1))

	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID, start)
	if err != nil {
		return nil, fmt.Errorf("ForecastNextWeek: %w", err)
	}

	series := buildDailySeries(txs, start, end)

	points, err := forecast.PredictNextWeek(series)
	if errors.Is(err, forecast.ErrInsufficientData) {
		s.log.Debug().Str("owner_id", ownerID).Int("series_days", len(series)).
			Msg("not enough daily history for a forecast")
		return []forecast.Point{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ForecastNextWeek: %w", err)
	}
	return points, nil
}

// buildDailySeries turns transactions into the gapless daily expense series
// the forecaster requires: one point per day from start to end, zero on days
// without spending. Zero days are real points; a quiet stretch still counts
// as history.
func buildDailySeries(txs []domain.Transaction, start, end time.Time) []forecast.DailyTotal {
	totals := make(map[string]float64)
	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		day := t.Date.UTC().Format("2006-01-02")
		amount, _ := t.Amount.Abs().Float64()
		totals[day] += amount
	}

	days := int(end.Sub(start).Hours()/24) + 1
	series := make([]forecast.DailyTotal, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series = append(series, forecast.DailyTotal{Date: d, Amount: totals[d.Format("2006-01-02")]})
	}
	return series
}
