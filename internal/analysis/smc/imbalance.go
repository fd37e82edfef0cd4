package smc

import (
	"smc-trader/internal/models"
)

// DefaultFVGLookback bounds the fair value gap scan.
const DefaultFVGLookback = 10

// DetectFVG scans consecutive bar triples over the last lookback bars for
// fair value gaps. A bullish gap leaves the middle bar's low above the
// first bar's high; the event level is the gap midpoint. Bearish is
// symmetric.
func DetectFVG(candles []models.Candle, lookback int, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	if len(candles) < 3 {
		return nil, nil
	}

	start := len(candles) - lookback
	if start < 2 {
		start = 2
	}
	var events []PatternEvent
	for i := start; i < len(candles); i++ {
		highPrev := candles[i-2].High
		lowPrev := candles[i-2].Low
		lowMid := candles[i-1].Low
		highMid := candles[i-1].High

		if lowMid > highPrev+tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternFVG,
				Direction: Long,
				Level:     (highPrev + lowMid) / 2.0,
				StartIdx:  i - 2,
				EndIdx:    intPtr(i),
				Meta: FVGMeta{
					GapHigh: lowMid,
					GapLow:  highPrev,
					Width:   lowMid - highPrev,
				},
			})
		}
		if highMid < lowPrev-tolerance {
			events = append(events, PatternEvent{
				Pattern:   PatternFVG,
				Direction: Short,
				Level:     (lowPrev + highMid) / 2.0,
				StartIdx:  i - 2,
				EndIdx:    intPtr(i),
				Meta: FVGMeta{
					GapHigh: lowPrev,
					GapLow:  highMid,
					Width:   lowPrev - highMid,
				},
			})
		}
	}
	return events, nil
}
