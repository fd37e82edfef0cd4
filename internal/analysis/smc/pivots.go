package smc

import (
	"smc-trader/internal/models"
)

// PivotKind distinguishes swing highs from swing lows.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// Pivot is a confirmed swing extreme. Index is zero-based into the candle
// series the pivot was computed from.
type Pivot struct {
	Index int
	Price float64
	Kind  PivotKind
}

// DefaultPivotWindow is the half-window used when a detector has to compute
// pivots itself.
const DefaultPivotWindow = 3

// FindPivots returns the confirmed swing pivots of the series, ordered by
// index. A bar is a High pivot when its high equals the maximum of the
// centered 2*window+1 sub-window, a Low pivot when its low equals the
// minimum; the same bar can be both. Bars within window of either boundary
// are never pivots. With useWicks false both comparisons use the close.
// A window below 1 is coerced to 1; a series shorter than 2*window+1
// yields no pivots.
func FindPivots(candles []models.Candle, window int, useWicks bool) []Pivot {
	if window < 1 {
		window = 1
	}
	var pivots []Pivot
	for i := window; i < len(candles)-window; i++ {
		hi := pivotSource(candles[i], useWicks, true)
		lo := pivotSource(candles[i], useWicks, false)

		isHigh, isLow := true, true
		for j := i - window; j <= i+window; j++ {
			if pivotSource(candles[j], useWicks, true) > hi {
				isHigh = false
			}
			if pivotSource(candles[j], useWicks, false) < lo {
				isLow = false
			}
		}
		if isHigh {
			pivots = append(pivots, Pivot{Index: i, Price: hi, Kind: PivotHigh})
		}
		if isLow {
			pivots = append(pivots, Pivot{Index: i, Price: lo, Kind: PivotLow})
		}
	}
	return pivots
}

func pivotSource(c models.Candle, useWicks, high bool) float64 {
	if !useWicks {
		return c.Close
	}
	if high {
		return c.High
	}
	return c.Low
}

// LatestPivots returns up to n most recent pivots of the given kind,
// oldest first.
func LatestPivots(pivots []Pivot, kind PivotKind, n int) []Pivot {
	var filtered []Pivot
	for _, p := range pivots {
		if p.Kind == kind {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > n {
		filtered = filtered[len(filtered)-n:]
	}
	return filtered
}

func ensurePivots(candles []models.Candle, pivots []Pivot) []Pivot {
	if pivots != nil {
		return pivots
	}
	return FindPivots(candles, DefaultPivotWindow, true)
}
