package smc

import (
	"math"

	"smc-trader/internal/models"
)

// Default windows for the structural metrics.
const (
	DefaultEquilibriumLookback  = 30
	DefaultOTELookback          = 100
	DefaultInvalidationLookback = 50
	DefaultSLBufferPct          = 0.001
)

// Stop classification values reported by ComputeInvalidationStop.
const (
	StopStructureHL   = "structure_hl"
	StopStructureLH   = "structure_lh"
	StopSwingLow      = "swing_low"
	StopSwingHigh     = "swing_high"
	StopRangeExtremum = "range_extremum"
)

// ComputeEquilibrium returns the range extremes and midpoint of the last
// lookback bars.
func ComputeEquilibrium(candles []models.Candle, lookback int) (*models.RangeLevels, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	seg, _ := tail(candles, lookback)
	high := highestHigh(seg)
	low := lowestLow(seg)
	return &models.RangeLevels{
		High:        high,
		Low:         low,
		Equilibrium: (high + low) / 2.0,
	}, nil
}

// ComputeOTEZone returns the optimal trade entry band, the 62% to 79%
// retracement of the lookback window's swing measured from the high toward
// the low. Nil when the window has no usable range.
func ComputeOTEZone(candles []models.Candle, lookback int) *models.Band {
	if len(candles) == 0 {
		return nil
	}
	seg, _ := tail(candles, lookback)
	swingHigh := highestHigh(seg)
	swingLow := lowestLow(seg)
	if swingHigh <= swingLow {
		return nil
	}
	r := swingHigh - swingLow
	return &models.Band{
		Low:  swingHigh - 0.79*r,
		High: swingHigh - 0.62*r,
	}
}

// ComputeInvalidationStop derives a stop-loss from the structural level
// whose breach would invalidate the directional thesis: under the last
// higher low for Long, above the last lower high for Short, offset by
// bufferPct. With fewer than two pivots in the window it falls back to the
// window extremum. Nil when no opposite-side pivot exists.
func ComputeInvalidationStop(candles []models.Candle, direction Direction, lookback int, bufferPct float64, pivots []Pivot) *models.StopLevel {
	if len(candles) == 0 {
		return nil
	}
	if direction != Long && direction != Short {
		return nil
	}

	seg, offset := tail(candles, lookback)
	if pivots == nil {
		pivots = FindPivots(seg, DefaultPivotWindow, true)
		for i := range pivots {
			pivots[i].Index += offset
		}
	}
	current := lastClose(candles)

	if len(pivots) < 2 {
		var sl float64
		if direction == Long {
			sl = lowestLow(seg) - current*bufferPct
		} else {
			sl = highestHigh(seg) + current*bufferPct
		}
		return &models.StopLevel{
			Price:             sl,
			Kind:              StopRangeExtremum,
			DistancePct:       math.Abs(current-sl) / current * 100,
			InvalidationLevel: sl,
		}
	}

	if direction == Long {
		lows := LatestPivots(pivots, PivotLow, 2)
		if len(lows) == 0 {
			return nil
		}
		last := lows[len(lows)-1]
		isHL := true
		if len(lows) >= 2 {
			isHL = last.Price > lows[len(lows)-2].Price
		}
		sl := last.Price - last.Price*bufferPct
		kind := StopSwingLow
		if isHL {
			kind = StopStructureHL
		}
		return &models.StopLevel{
			Price:             sl,
			Kind:              kind,
			DistancePct:       math.Abs(current-sl) / current * 100,
			InvalidationLevel: last.Price,
			Structure:         isHL,
			PivotIdx:          intPtr(last.Index),
		}
	}

	highs := LatestPivots(pivots, PivotHigh, 2)
	if len(highs) == 0 {
		return nil
	}
	last := highs[len(highs)-1]
	isLH := true
	if len(highs) >= 2 {
		isLH = last.Price < highs[len(highs)-2].Price
	}
	sl := last.Price + last.Price*bufferPct
	kind := StopSwingHigh
	if isLH {
		kind = StopStructureLH
	}
	return &models.StopLevel{
		Price:             sl,
		Kind:              kind,
		DistancePct:       math.Abs(current-sl) / current * 100,
		InvalidationLevel: last.Price,
		Structure:         isLH,
		PivotIdx:          intPtr(last.Index),
	}
}
