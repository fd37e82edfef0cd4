package smc

import (
	"math"

	"smc-trader/internal/errors"
	"smc-trader/internal/models"
)

// DefaultTolerance guards breakout comparisons against floating noise.
const DefaultTolerance = 1e-4

func validate(candles []models.Candle) error {
	if len(candles) == 0 {
		return errors.ErrEmptySeries
	}
	return nil
}

// tail returns the last n candles together with the absolute index of the
// first returned bar.
func tail(candles []models.Candle, n int) ([]models.Candle, int) {
	if n >= len(candles) {
		return candles, 0
	}
	offset := len(candles) - n
	return candles[offset:], offset
}

func highestHigh(candles []models.Candle) float64 {
	hi := math.Inf(-1)
	for _, c := range candles {
		if c.High > hi {
			hi = c.High
		}
	}
	return hi
}

func lowestLow(candles []models.Candle) float64 {
	lo := math.Inf(1)
	for _, c := range candles {
		if c.Low < lo {
			lo = c.Low
		}
	}
	return lo
}

func lastClose(candles []models.Candle) float64 {
	return candles[len(candles)-1].Close
}

func intPtr(i int) *int {
	return &i
}
