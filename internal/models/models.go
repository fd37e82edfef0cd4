// Package models provides domain models for the signal engine.
package models

import (
	"time"
)

// Timeframe represents a chart timeframe label as requested from the
// rate provider (MT5-style naming).
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeM30 Timeframe = "M30"
	TimeframeH1  Timeframe = "H1"
	TimeframeH4  Timeframe = "H4"
	TimeframeD1  Timeframe = "D1"
)

// TimeframeOrder lists timeframes from fastest to slowest.
var TimeframeOrder = []Timeframe{
	TimeframeM1, TimeframeM5, TimeframeM15, TimeframeM30,
	TimeframeH1, TimeframeH4, TimeframeD1,
}

// Candle represents OHLC data for one period. The bar series handed to the
// analysis layer is zero-indexed with index 0 being the oldest bar, and is
// never mutated after ingestion.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// Signal represents a directional trading decision.
type Signal string

const (
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
	SignalWait  Signal = "WAIT"
)

// Bias represents the structural trend bias derived from swing pivots.
type Bias string

const (
	BiasUp   Bias = "up"
	BiasDown Bias = "down"
	BiasNone Bias = ""
)
