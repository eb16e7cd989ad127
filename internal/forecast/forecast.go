// Package forecast produces a short-horizon daily expense forecast from a
// gapless daily spending series. The model follows the original product's
// forecaster: a weekly-seasonality fit (7-day analysis window) over up to 90
// days of history, predicting exactly 7 days ahead.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInsufficientData is returned when the series is too short or too
// degenerate to fit. Callers treat it as a recoverable condition, not a
// failure.
var ErrInsufficientData = errors.New("insufficient data for forecast")

const (
	// Horizon is the number of days predicted ahead.
	Horizon = 7

	// seasonLength is the analysis window: spending patterns repeat weekly.
	seasonLength = 7

	// minPoints is the minimum series length required for a fit.
	minPoints = 10
)

// DailyTotal is one day's absolute expense total. Days without spending must
// be present with Amount 0; the fit requires a gapless series.
type DailyTotal struct {
	Date   time.Time
	Amount float64
}

// Point is one forecasted day.
type Point struct {
	Date            time.Time `json:"date"`
	PredictedAmount float64   `json:"predictedAmount"`
}

// PredictNextWeek fits a weekly-seasonal model over the series and returns
// exactly Horizon forward points, dated sequentially after the last observed
// day and clamped to a minimum of 0. Any condition that prevents a sound fit
// (short series, gaps, non-finite values) is reported as
// ErrInsufficientData; the function never returns a partial forecast.
func PredictNextWeek(series []DailyTotal) ([]Point, error) {
	if len(series) < minPoints {
		return nil, fmt.Errorf("forecast: %d daily points, need %d: %w", len(series), minPoints, ErrInsufficientData)
	}

	for i := 1; i < len(series); i++ {
		want := series[i-1].Date.AddDate(0, 0, 1)
		if !sameDay(series[i].Date, want) {
			return nil, fmt.Errorf("forecast: gap in daily series at %s: %w",
				series[i].Date.Format("2006-01-02"), ErrInsufficientData)
		}
	}
	for _, d := range series {
		if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
			return nil, fmt.Errorf("forecast: non-finite amount on %s: %w",
				d.Date.Format("2006-01-02"), ErrInsufficientData)
		}
	}

	slope, intercept := fitTrend(series)
	seasonal := fitSeasonal(series, slope, intercept)

	last := series[len(series)-1].Date
	n := len(series)

	points := make([]Point, 0, Horizon)
	for h := 1; h <= Horizon; h++ {
		date := last.AddDate(0, 0, h)
		predicted := intercept + slope*float64(n-1+h) + seasonal[int(date.Weekday())]
		if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
			return nil, fmt.Errorf("forecast: degenerate fit: %w", ErrInsufficientData)
		}
		points = append(points, Point{
			Date:            date,
			PredictedAmount: math.Max(0, predicted),
		})
	}
	return points, nil
}

// fitTrend computes an ordinary least-squares line over (index, amount).
func fitTrend(series []DailyTotal) (slope, intercept float64) {
	n := float64(len(series))

	var sumX, sumY, sumXY, sumXX float64
	for i, d := range series {
		x := float64(i)
		sumX += x
		sumY += d.Amount
		sumXY += x * d.Amount
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// fitSeasonal averages the detrended residuals per weekday, yielding one
// additive component for each day of the weekly cycle.
func fitSeasonal(series []DailyTotal, slope, intercept float64) [seasonLength]float64 {
	var sums [seasonLength]float64
	var counts [seasonLength]int

	for i, d := range series {
		wd := int(d.Date.Weekday())
		sums[wd] += d.Amount - (intercept + slope*float64(i))
		counts[wd]++
	}

	var seasonal [seasonLength]float64
	for wd := range sums {
		if counts[wd] > 0 {
			seasonal[wd] = sums[wd] / float64(counts[wd])
		}
	}
	return seasonal
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
