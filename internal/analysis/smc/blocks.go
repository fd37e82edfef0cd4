package smc

import (
	"math"

	"smc-trader/internal/models"
)

// Default windows for the block detectors.
const (
	DefaultOrderBlockLookback = 30
	DefaultMitigationLookback = 50
)

// DetectOrderBlocks marks the body of the last opposing candle before a
// window breakout. With the latest close within 0.1% of the window high,
// the most recent bearish candle's body becomes a Long order block;
// symmetric for the window low.
func DetectOrderBlocks(candles []models.Candle, pivots []Pivot, lookback int) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	pivots = ensurePivots(candles, pivots)
	if len(pivots) == 0 {
		return nil, nil
	}

	seg, offset := tail(candles, lookback)
	if len(seg) < 3 {
		return nil, nil
	}

	closeLast := lastClose(seg)
	winHigh := highestHigh(seg)
	winLow := lowestLow(seg)

	var events []PatternEvent
	if closeLast > winHigh*0.999 {
		if i := lastOpposing(seg, true); i >= 0 {
			c := seg[i]
			events = append(events, PatternEvent{
				Pattern:   PatternOrderBlock,
				Direction: Long,
				Level:     c.Open,
				StartIdx:  offset + i,
				Meta: ZoneMeta{
					ZoneLow:  math.Min(c.Open, c.Close),
					ZoneHigh: math.Max(c.Open, c.Close),
				},
			})
		}
	}
	if closeLast < winLow*1.001 {
		if i := lastOpposing(seg, false); i >= 0 {
			c := seg[i]
			events = append(events, PatternEvent{
				Pattern:   PatternOrderBlock,
				Direction: Short,
				Level:     c.Open,
				StartIdx:  offset + i,
				Meta: ZoneMeta{
					ZoneLow:  math.Min(c.Open, c.Close),
					ZoneHigh: math.Max(c.Open, c.Close),
				},
			})
		}
	}
	return events, nil
}

// lastOpposing returns the index of the most recent bearish (wantBearish)
// or bullish candle in the segment, or -1.
func lastOpposing(seg []models.Candle, wantBearish bool) int {
	for i := len(seg) - 1; i >= 0; i-- {
		if wantBearish && seg[i].Close < seg[i].Open {
			return i
		}
		if !wantBearish && seg[i].Close > seg[i].Open {
			return i
		}
	}
	return -1
}

// DetectBreakerBlocks promotes order blocks whose zone price has since
// closed back through: a Long block with the close above its zone high
// persists as support-turned-resistance, a Short block with the close
// below its zone low mirrors that.
func DetectBreakerBlocks(candles []models.Candle, pivots []Pivot, tolerance float64) ([]PatternEvent, error) {
	pivots = ensurePivots(candles, pivots)
	if len(pivots) < 3 {
		return nil, nil
	}
	orderBlocks, err := DetectOrderBlocks(candles, pivots, DefaultOrderBlockLookback)
	if err != nil {
		return nil, err
	}
	if len(orderBlocks) == 0 {
		return nil, nil
	}

	closeLast := lastClose(candles)
	var events []PatternEvent
	for _, ob := range orderBlocks {
		zone := ob.Meta.(ZoneMeta)
		if ob.Direction == Long {
			if closeLast > zone.ZoneHigh+tolerance {
				events = append(events, PatternEvent{
					Pattern:   PatternBreakerBlock,
					Direction: Long,
					Level:     zone.ZoneHigh,
					StartIdx:  ob.StartIdx,
					Meta:      BreakerMeta{FromOB: ob.Payload()},
				})
			}
		} else {
			if closeLast < zone.ZoneLow-tolerance {
				events = append(events, PatternEvent{
					Pattern:   PatternBreakerBlock,
					Direction: Short,
					Level:     zone.ZoneLow,
					StartIdx:  ob.StartIdx,
					Meta:      BreakerMeta{FromOB: ob.Payload()},
				})
			}
		}
	}
	return events, nil
}

// DetectMitigationBlock finds order block zones that were touched by later
// bars yet held on every close, with price currently in or near the zone.
// Tested-but-held zones are the preferred entry areas.
func DetectMitigationBlock(candles []models.Candle, pivots []Pivot, lookback int) ([]PatternEvent, error) {
	if err := validate(candles); err != nil {
		return nil, err
	}
	if len(candles) < 10 {
		return nil, nil
	}
	orderBlocks, err := DetectOrderBlocks(candles, pivots, lookback)
	if err != nil {
		return nil, err
	}
	if len(orderBlocks) == 0 {
		return nil, nil
	}

	n := len(candles)
	cur := candles[n-1]
	var events []PatternEvent
	for _, ob := range orderBlocks {
		zone := ob.Meta.(ZoneMeta)
		if ob.StartIdx >= n-3 {
			continue
		}
		post := candles[ob.StartIdx+1:]
		if len(post) < 3 {
			continue
		}

		if ob.Direction == Long {
			touched, held, tested := zoneTouches(post, zone, true)
			if !touched || !held {
				continue
			}
			inZone := zone.ZoneLow <= cur.Close && cur.Close <= zone.ZoneHigh*1.01
			nearZone := zone.ZoneLow*0.99 <= cur.Low && cur.Low <= zone.ZoneHigh*1.02
			if inZone || nearZone {
				events = append(events, PatternEvent{
					Pattern:   PatternMitigationBlock,
					Direction: Long,
					Level:     zone.ZoneLow,
					StartIdx:  ob.StartIdx,
					EndIdx:    intPtr(n - 1),
					Meta: MitigationMeta{
						ZoneLow:     zone.ZoneLow,
						ZoneHigh:    zone.ZoneHigh,
						EntryZone:   true,
						TimesTested: tested,
						Strength:    "high",
					},
				})
			}
		} else {
			touched, held, tested := zoneTouches(post, zone, false)
			if !touched || !held {
				continue
			}
			inZone := zone.ZoneLow*0.99 <= cur.Close && cur.Close <= zone.ZoneHigh
			nearZone := zone.ZoneLow*0.98 <= cur.High && cur.High <= zone.ZoneHigh*1.01
			if inZone || nearZone {
				events = append(events, PatternEvent{
					Pattern:   PatternMitigationBlock,
					Direction: Short,
					Level:     zone.ZoneHigh,
					StartIdx:  ob.StartIdx,
					EndIdx:    intPtr(n - 1),
					Meta: MitigationMeta{
						ZoneLow:     zone.ZoneLow,
						ZoneHigh:    zone.ZoneHigh,
						EntryZone:   true,
						TimesTested: tested,
						Strength:    "high",
					},
				})
			}
		}
	}
	return events, nil
}

// zoneTouches reports whether any post-block bar touched the zone, whether
// every post-block close held it, and the touch count. For a Long zone a
// touch is a low at or under the zone high and holding means closes above
// the zone low; Short is the mirror.
func zoneTouches(post []models.Candle, zone ZoneMeta, long bool) (touched, held bool, tested int) {
	held = true
	for _, c := range post {
		if long {
			if c.Low <= zone.ZoneHigh {
				touched = true
				tested++
			}
			if c.Close <= zone.ZoneLow {
				held = false
			}
		} else {
			if c.High >= zone.ZoneLow {
				touched = true
				tested++
			}
			if c.Close >= zone.ZoneHigh {
				held = false
			}
		}
	}
	return touched, held, tested
}
