// Package scoring combines pattern events into a weighted directional vote.
package scoring

import (
	"smc-trader/internal/analysis/smc"
	"smc-trader/internal/models"
)

// Detector names as they appear in the event map and the config weights
// table.
const (
	NameBOS             = "bos"
	NameCHoCH           = "choch"
	NameFVG             = "fvg"
	NameEQH             = "eqh"
	NameEQL             = "eql"
	NameOrderBlocks     = "order_blocks"
	NameBreakerBlocks   = "breaker_blocks"
	NameInducement      = "inducement"
	NameLiquiditySweep  = "liquidity_sweep"
	NameMitigationBlock = "mitigation_block"
)

// DetectorOrder fixes the accumulation order so a vote over the same
// events is always byte-identical.
var DetectorOrder = []string{
	NameBOS,
	NameCHoCH,
	NameFVG,
	NameEQH,
	NameEQL,
	NameOrderBlocks,
	NameBreakerBlocks,
	NameInducement,
	NameLiquiditySweep,
	NameMitigationBlock,
}

// Weights maps detector names to their vote weight. Unknown names score
// with weight 1.
type Weights map[string]float64

// DefaultWeights returns the standard weight table. Reversal patterns
// (inducement, sweeps) carry the heaviest weights, liquidity clusters the
// lightest.
func DefaultWeights() Weights {
	return Weights{
		NameBOS:             2.0,
		NameCHoCH:           2.0,
		NameBreakerBlocks:   1.5,
		NameOrderBlocks:     1.0,
		NameFVG:             0.75,
		NameEQH:             0.5,
		NameEQL:             0.5,
		NameInducement:      2.5,
		NameLiquiditySweep:  2.0,
		NameMitigationBlock: 1.5,
	}
}

// weight returns the weight for a detector name, defaulting to 1.
func (w Weights) weight(name string) float64 {
	if v, ok := w[name]; ok {
		return v
	}
	return 1.0
}

// Vote accumulates each event's weight on the score matching its direction
// and resolves the directional signal: a side wins when its score exceeds
// 1.2 times the other side and is positive, otherwise the vote is WAIT.
// Detector names outside DetectorOrder are ignored, which keeps the
// accumulation order fixed.
func Vote(events map[string][]smc.PatternEvent, weights Weights) (models.Signal, float64, float64) {
	if weights == nil {
		weights = DefaultWeights()
	}

	var longScore, shortScore float64
	for _, name := range DetectorOrder {
		w := weights.weight(name)
		for _, evt := range events[name] {
			switch evt.Direction {
			case smc.Long:
				longScore += w
			case smc.Short:
				shortScore += w
			}
		}
	}

	signal := models.SignalWait
	switch {
	case longScore > shortScore*1.2 && longScore > 0:
		signal = models.SignalLong
	case shortScore > longScore*1.2 && shortScore > 0:
		signal = models.SignalShort
	}
	return signal, longScore, shortScore
}
