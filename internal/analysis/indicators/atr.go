// Package indicators provides technical indicator calculations over candle
// series.
package indicators

import (
	"fmt"
	"math"

	"smc-trader/internal/models"
)

// ATR calculates the Average True Range as a simple moving average of the
// classic true range. Positions before the warmup threshold hold NaN.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) Period() int {
	return a.period
}

// MinPeriods is the minimum number of observations a rolling window needs
// before it produces a value.
func (a *ATR) MinPeriods() int {
	mp := a.period / 2
	if mp < 2 {
		mp = 2
	}
	return mp
}

// Calculate returns one ATR value per candle. The first true range is the
// plain high-low span; each output is the mean of the true ranges in the
// trailing window of size period, or NaN while fewer than MinPeriods
// observations are available.
func (a *ATR) Calculate(candles []models.Candle) ([]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	tr := make([]float64, n)
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < n; i++ {
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	minPeriods := a.MinPeriods()
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - a.period + 1
		if start < 0 {
			start = 0
		}
		if i-start+1 < minPeriods {
			result[i] = math.NaN()
			continue
		}
		result[i] = mean(tr[start : i+1])
	}
	return result, nil
}

// Last returns the most recent ATR value, or NaN when the series is still
// inside the warmup window.
func (a *ATR) Last(candles []models.Candle) (float64, error) {
	values, err := a.Calculate(candles)
	if err != nil {
		return math.NaN(), err
	}
	return values[len(values)-1], nil
}
