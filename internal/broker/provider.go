// Package broker provides candle data providers.
package broker

import (
	"context"
	"math"
	"sort"
	"time"

	"smc-trader/internal/errors"
	"smc-trader/internal/models"
)

// RateProvider supplies historical candles for a symbol/timeframe pair.
// Implementations must return candles in ascending time order; a nil or
// empty result signals "no data" to the caller. The context bounds the
// only blocking call in a signal pass, so providers must honor it.
type RateProvider interface {
	GetRates(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error)
}

// Columns is the column-shaped inbound payload some data sources deliver.
// All slices must have equal length.
type Columns struct {
	Time  []time.Time
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

// FromColumns normalizes a column-shaped payload into candles, sorted by
// ascending time.
func FromColumns(cols Columns) ([]models.Candle, error) {
	n := len(cols.Time)
	if len(cols.Open) != n || len(cols.High) != n || len(cols.Low) != n || len(cols.Close) != n {
		return nil, errors.NewDataError("columns", "", "column length mismatch", nil)
	}
	candles := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		candles = append(candles, models.Candle{
			Timestamp: cols.Time[i],
			Open:      cols.Open[i],
			High:      cols.High[i],
			Low:       cols.Low[i],
			Close:     cols.Close[i],
		})
	}
	return Normalize(candles), nil
}

// Normalize sorts candles by ascending time and drops rows with missing
// values.
func Normalize(candles []models.Candle) []models.Candle {
	out := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Timestamp.IsZero() {
			continue
		}
		if math.IsNaN(c.Open) || math.IsNaN(c.High) || math.IsNaN(c.Low) || math.IsNaN(c.Close) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Tail returns at most count trailing candles.
func Tail(candles []models.Candle, count int) []models.Candle {
	if count <= 0 || count >= len(candles) {
		return candles
	}
	return candles[len(candles)-count:]
}
