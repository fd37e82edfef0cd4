package smc

import (
	"smc-trader/internal/models"
)

// DetectBOS detects bullish/bearish breaks of structure against the most
// recent pivots. A break fires when the last close clears the most recent
// High pivot (Long) or the most recent Low pivot (Short) beyond tolerance.
// Both hypotheses are evaluated independently.
func DetectBOS(candles []models.Candle, pivots []Pivot, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	pivots = ensurePivots(candles, pivots)
	if len(pivots) < 3 {
		return nil, nil
	}

	closeLast := lastClose(candles)
	highs := LatestPivots(pivots, PivotHigh, 2)
	lows := LatestPivots(pivots, PivotLow, 2)

	var events []PatternEvent
	if len(highs) >= 1 {
		last := highs[len(highs)-1]
		if closeLast > last.Price+tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternBOS,
				Direction: Long,
				Level:     last.Price,
				StartIdx:  last.Index,
				Meta:      BreakMeta{BrokenHigh: last.Price},
			})
		}
	}
	if len(lows) >= 1 {
		last := lows[len(lows)-1]
		if closeLast < last.Price-tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternBOS,
				Direction: Short,
				Level:     last.Price,
				StartIdx:  last.Index,
				Meta:      BreakMeta{BrokenLow: last.Price},
			})
		}
	}
	return events, nil
}

// DetectCHoCH detects a change of character: a close breaking the last
// opposite swing after the pivot sequence just printed an extreme. With a
// High as the most recent pivot, a close below the last Low pivot flips
// structure Short; with a Low, a close above the last High pivot flips Long.
func DetectCHoCH(candles []models.Candle, pivots []Pivot, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	pivots = ensurePivots(candles, pivots)
	if len(pivots) < 4 {
		return nil, nil
	}

	closeLast := lastClose(candles)
	highs := LatestPivots(pivots, PivotHigh, 2)
	lows := LatestPivots(pivots, PivotLow, 2)
	if len(highs) < 1 || len(lows) < 1 {
		return nil, nil
	}

	var events []PatternEvent
	if pivots[len(pivots)-1].Kind == PivotHigh {
		last := lows[len(lows)-1]
		if closeLast < last.Price-tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternCHoCH,
				Direction: Short,
				Level:     last.Price,
				StartIdx:  last.Index,
				Meta:      BreakMeta{BrokenLow: last.Price},
			})
		}
	} else {
		last := highs[len(highs)-1]
		if closeLast > last.Price+tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternCHoCH,
				Direction: Long,
				Level:     last.Price,
				StartIdx:  last.Index,
				Meta:      BreakMeta{BrokenHigh: last.Price},
			})
		}
	}
	return events, nil
}
