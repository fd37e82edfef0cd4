package smc

import (
	"math"

	"smc-trader/internal/models"
)

// Default windows and tolerances for the liquidity detectors.
const (
	DefaultEqualLookback      = 20
	DefaultEqualTolerance     = 1e-3
	DefaultInducementLookback = 30
	DefaultInducementTol      = 0.001
	DefaultSweepLookback      = 20
)

// DetectEqualHighs looks for a cluster of highs within tolerance of the
// window maximum. Two or more touches mean resting liquidity above; the
// single event spans the earliest clustered bar to the extreme itself and
// leans Short.
func DetectEqualHighs(candles []models.Candle, lookback int, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	seg, offset := tail(candles, lookback)
	if len(seg) < 2 {
		return nil, nil
	}

	maxVal := highestHigh(seg)
	extremeIdx := -1
	var near []int
	for i, c := range seg {
		if math.Abs(c.High-maxVal) <= tolerance {
			near = append(near, offset+i)
		}
		if extremeIdx < 0 && c.High == maxVal {
			extremeIdx = offset + i
		}
	}
	if len(near) < 2 {
		return nil, nil
	}
	start, end := near[0], extremeIdx
	if end <= start {
		end = near[len(near)-1]
	}
	return []PatternEvent{{
		Pattern:   PatternEQH,
		Direction: Short,
		Level:     maxVal,
		StartIdx:  start,
		EndIdx:    intPtr(end),
		Meta:      ClusterMeta{Count: len(near)},
	}}, nil
}

// DetectEqualLows is the mirror of DetectEqualHighs: clustered lows mean
// resting liquidity below and lean Long.
func DetectEqualLows(candles []models.Candle, lookback int, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	seg, offset := tail(candles, lookback)
	if len(seg) < 2 {
		return nil, nil
	}

	minVal := lowestLow(seg)
	extremeIdx := -1
	var near []int
	for i, c := range seg {
		if math.Abs(c.Low-minVal) <= tolerance {
			near = append(near, offset+i)
		}
		if extremeIdx < 0 && c.Low == minVal {
			extremeIdx = offset + i
		}
	}
	if len(near) < 2 {
		return nil, nil
	}
	start, end := near[0], extremeIdx
	if end <= start {
		end = near[len(near)-1]
	}
	return []PatternEvent{{
		Pattern:   PatternEQL,
		Direction: Long,
		Level:     minVal,
		StartIdx:  start,
		EndIdx:    intPtr(end),
		Meta:      ClusterMeta{Count: len(near)},
	}}, nil
}

// DetectInducement flags liquidity traps: a wick on the second-to-last bar
// piercing a clustered extreme while the final close recovers back across
// the level. The cluster is built from the window excluding the last three
// bars so the sweep cannot count as its own liquidity.
func DetectInducement(candles []models.Candle, lookback int, tolerance float64) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	if len(candles) < lookback {
		return nil, nil
	}

	seg, _ := tail(candles, lookback)
	n := len(candles)
	closeCur := seg[len(seg)-1].Close
	cluster := seg[:len(seg)-3]
	if len(cluster) < 2 {
		return nil, nil
	}

	maxHigh := highestHigh(cluster)
	minLow := lowestLow(cluster)
	tolHigh := maxHigh * tolerance
	tolLow := minLow * tolerance

	nearHighs, nearLows := 0, 0
	for _, c := range cluster {
		if math.Abs(c.High-maxHigh) <= tolHigh {
			nearHighs++
		}
		if math.Abs(c.Low-minLow) <= tolLow {
			nearLows++
		}
	}

	var events []PatternEvent
	sweepLow := seg[len(seg)-2].Low
	if nearLows >= 2 && sweepLow < minLow-tolLow && closeCur > minLow {
		events = append(events, PatternEvent{
			Pattern:   PatternInducement,
			Direction: Long,
			Level:     minLow,
			StartIdx:  n - 2,
			EndIdx:    intPtr(n - 1),
			Meta: InducementMeta{
				LiquidityLevel: minLow,
				SweepLow:       sweepLow,
				RecoveryClose:  closeCur,
				Touches:        nearLows,
				Strength:       float64(nearLows) / 2.0,
			},
		})
	}
	sweepHigh := seg[len(seg)-2].High
	if nearHighs >= 2 && sweepHigh > maxHigh+tolHigh && closeCur < maxHigh {
		events = append(events, PatternEvent{
			Pattern:   PatternInducement,
			Direction: Short,
			Level:     maxHigh,
			StartIdx:  n - 2,
			EndIdx:    intPtr(n - 1),
			Meta: InducementMeta{
				LiquidityLevel: maxHigh,
				SweepHigh:      sweepHigh,
				RecoveryClose:  closeCur,
				Touches:        nearHighs,
				Strength:       float64(nearHighs) / 2.0,
			},
		})
	}
	return events, nil
}

// DetectLiquiditySweep inspects the two bars before last for a dominant
// wick (over 40% of the bar range) whose follow-up close crosses back over
// the bar's open: a high sweep with a bearish follow-up leans Short, a low
// sweep with a bullish follow-up leans Long.
func DetectLiquiditySweep(candles []models.Candle, lookback int) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	if len(candles) < 5 {
		return nil, nil
	}

	seg, offset := tail(candles, lookback)
	var events []PatternEvent
	for i := len(seg) - 3; i <= len(seg)-2; i++ {
		if i < 0 {
			continue
		}
		candle := seg[i]
		nextClose := seg[i+1].Close

		barRange := candle.High - candle.Low
		if barRange == 0 {
			continue
		}
		bodyHigh := math.Max(candle.Open, candle.Close)
		bodyLow := math.Min(candle.Open, candle.Close)
		upperWick := candle.High - bodyHigh
		lowerWick := bodyLow - candle.Low

		if upperWick > barRange*0.4 && nextClose < candle.Open {
			events = append(events, PatternEvent{
				Pattern:   PatternLiquiditySweep,
				Direction: Short,
				Level:     candle.High,
				StartIdx:  offset + i,
				Meta: SweepMeta{
					SweepType:    "high_sweep",
					WickRatio:    upperWick / barRange,
					Confirmation: "bearish_close",
				},
			})
		}
		if lowerWick > barRange*0.4 && nextClose > candle.Open {
			events = append(events, PatternEvent{
				Pattern:   PatternLiquiditySweep,
				Direction: Long,
				Level:     candle.Low,
				StartIdx:  offset + i,
				Meta: SweepMeta{
					SweepType:    "low_sweep",
					WickRatio:    lowerWick / barRange,
					Confirmation: "bullish_close",
				},
			})
		}
	}
	return events, nil
}
