package smc

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"smc-trader/internal/models"
)

// candleGen generates valid candle data with realistic OHLC values
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(100.0, 1000.0),
		"High":      gen.Float64Range(100.0, 1000.0),
		"Low":       gen.Float64Range(100.0, 1000.0),
		"Close":     gen.Float64Range(100.0, 1000.0),
	}).Map(func(c models.Candle) models.Candle {
		if c.Open <= 0 {
			c.Open = 100.0
		}
		if c.Close <= 0 {
			c.Close = 100.0
		}
		// Ensure OHLC constraints: High >= max(Open, Close) and Low <= min(Open, Close)
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		if c.Low > c.High {
			c.Low, c.High = c.High, c.Low
		}
		if c.High <= c.Low {
			c.High = c.Low + 1.0
		}
		return c
	})
}

// candleSliceGen generates a slice of valid candles ordered by timestamp
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, candleGen()).Map(func(candles []models.Candle) []models.Candle {
		if len(candles) < minLen {
			for len(candles) < minLen {
				candles = append(candles, candles[len(candles)-1])
			}
		}
		for i := range candles {
			candles[i].Timestamp = time.Now().Add(time.Duration(i) * time.Hour)
		}
		return candles
	})
}

func TestProperty_PivotsRespectWindowBoundaries(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("pivot indices stay window bars away from both edges", prop.ForAll(
		func(candles []models.Candle, window int) bool {
			pivots := FindPivots(candles, window, true)
			for _, p := range pivots {
				if p.Index < window || p.Index > len(candles)-window-1 {
					return false
				}
			}
			return true
		},
		candleSliceGen(5, 60),
		gen.IntRange(1, 5),
	))

	properties.Property("pivot detection is deterministic", prop.ForAll(
		func(candles []models.Candle) bool {
			first := FindPivots(candles, 3, true)
			second := FindPivots(candles, 3, true)
			return reflect.DeepEqual(first, second)
		},
		candleSliceGen(10, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_DetectorIndicesWithinSeries(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	detectors := []func(candles []models.Candle) ([]PatternEvent, error){
		func(c []models.Candle) ([]PatternEvent, error) { return DetectBOS(c, nil, DefaultTolerance) },
		func(c []models.Candle) ([]PatternEvent, error) { return DetectCHoCH(c, nil, DefaultTolerance) },
		func(c []models.Candle) ([]PatternEvent, error) { return DetectFVG(c, DefaultFVGLookback, 0) },
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectEqualHighs(c, DefaultEqualLookback, DefaultEqualTolerance)
		},
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectEqualLows(c, DefaultEqualLookback, DefaultEqualTolerance)
		},
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectOrderBlocks(c, nil, DefaultOrderBlockLookback)
		},
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectBreakerBlocks(c, nil, DefaultTolerance)
		},
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectInducement(c, DefaultInducementLookback, DefaultInducementTol)
		},
		func(c []models.Candle) ([]PatternEvent, error) { return DetectLiquiditySweep(c, DefaultSweepLookback) },
		func(c []models.Candle) ([]PatternEvent, error) {
			return DetectMitigationBlock(c, nil, DefaultMitigationLookback)
		},
	}

	properties.Property("every event stays inside the series and carries a known direction", prop.ForAll(
		func(candles []models.Candle) bool {
			for _, detect := range detectors {
				events, err := detect(candles)
				if err != nil {
					return false
				}
				for _, evt := range events {
					if evt.StartIdx < 0 || evt.StartIdx >= len(candles) {
						return false
					}
					if evt.EndIdx != nil && (*evt.EndIdx < 0 || *evt.EndIdx >= len(candles)) {
						return false
					}
					if evt.Direction != Long && evt.Direction != Short {
						return false
					}
					if evt.Level <= 0 || math.IsNaN(evt.Level) {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(10, 80),
	))

	properties.TestingRun(t)
}

func TestProperty_OTEZoneWithinSwing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("the entry band is ordered and sits inside the swing range", prop.ForAll(
		func(candles []models.Candle) bool {
			band := ComputeOTEZone(candles, DefaultOTELookback)
			if band == nil {
				return true
			}
			if band.Low > band.High {
				return false
			}
			low := lowestLow(candles)
			high := highestHigh(candles)
			return band.Low >= low-1e-9 && band.High <= high+1e-9
		},
		candleSliceGen(10, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_InvalidationStopSidesCorrectly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("long stops sit below their level, short stops above", prop.ForAll(
		func(candles []models.Candle) bool {
			if long := ComputeInvalidationStop(candles, Long, DefaultInvalidationLookback, DefaultSLBufferPct, nil); long != nil {
				if long.Price > long.InvalidationLevel || long.DistancePct < 0 {
					return false
				}
			}
			if short := ComputeInvalidationStop(candles, Short, DefaultInvalidationLookback, DefaultSLBufferPct, nil); short != nil {
				if short.Price < short.InvalidationLevel || short.DistancePct < 0 {
					return false
				}
			}
			return true
		},
		candleSliceGen(10, 100),
	))

	properties.TestingRun(t)
}
