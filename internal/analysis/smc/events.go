// Package smc detects Smart Money Concepts market structure patterns:
// swing pivots, structure breaks, liquidity clusters, imbalances and the
// derived structural metrics (equilibrium, OTE zone, invalidation stop).
package smc

import (
	"smc-trader/internal/models"
)

// Direction is the directional hypothesis attached to a pattern event.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// PatternKind identifies the pattern family of an event.
type PatternKind string

const (
	PatternBOS             PatternKind = "BOS"
	PatternCHoCH           PatternKind = "CHoCH"
	PatternFVG             PatternKind = "FVG"
	PatternEQH             PatternKind = "EQH"
	PatternEQL             PatternKind = "EQL"
	PatternOrderBlock      PatternKind = "ORDER_BLOCK"
	PatternBreakerBlock    PatternKind = "BREAKER_BLOCK"
	PatternInducement      PatternKind = "INDUCEMENT"
	PatternLiquiditySweep  PatternKind = "LIQUIDITY_SWEEP"
	PatternMitigationBlock PatternKind = "MITIGATION_BLOCK"
)

// PatternEvent is one detected occurrence of a pattern. StartIdx and EndIdx
// are zero-based indices into the candle series handed to the detector;
// when EndIdx is set, StartIdx < EndIdx.
type PatternEvent struct {
	Pattern   PatternKind
	Direction Direction
	Level     float64
	StartIdx  int
	EndIdx    *int
	Meta      interface{}
}

// Payload converts the event to its wire representation.
func (e PatternEvent) Payload() models.EventPayload {
	return models.EventPayload{
		Pattern:   string(e.Pattern),
		Direction: string(e.Direction),
		Level:     e.Level,
		StartIdx:  e.StartIdx,
		EndIdx:    e.EndIdx,
		Meta:      e.Meta,
	}
}

// BreakMeta carries the broken pivot level for BOS and CHoCH events.
// Exactly one of the two fields is set.
type BreakMeta struct {
	BrokenHigh float64 `json:"broken_high,omitempty"`
	BrokenLow  float64 `json:"broken_low,omitempty"`
}

// FVGMeta describes the bounds of a fair value gap.
type FVGMeta struct {
	GapHigh float64 `json:"gap_high"`
	GapLow  float64 `json:"gap_low"`
	Width   float64 `json:"width"`
}

// ClusterMeta carries the size of an equal highs/lows cluster.
type ClusterMeta struct {
	Count int `json:"count"`
}

// ZoneMeta describes an order block body.
type ZoneMeta struct {
	ZoneLow  float64 `json:"zone_low"`
	ZoneHigh float64 `json:"zone_high"`
}

// BreakerMeta links a breaker block back to the order block it was
// promoted from.
type BreakerMeta struct {
	FromOB models.EventPayload `json:"from_ob"`
}

// InducementMeta describes a liquidity trap: the swept cluster level, the
// sweep extreme and the close that recovered across the level.
type InducementMeta struct {
	LiquidityLevel float64 `json:"liquidity_level"`
	SweepLow       float64 `json:"sweep_low,omitempty"`
	SweepHigh      float64 `json:"sweep_high,omitempty"`
	RecoveryClose  float64 `json:"recovery_close"`
	Touches        int     `json:"touches"`
	Strength       float64 `json:"strength"`
}

// SweepMeta describes a single-bar liquidity sweep.
type SweepMeta struct {
	SweepType    string  `json:"sweep_type"`
	WickRatio    float64 `json:"wick_ratio"`
	Confirmation string  `json:"confirmation"`
}

// MitigationMeta describes a tested-but-held order block zone.
type MitigationMeta struct {
	ZoneLow     float64 `json:"zone_low"`
	ZoneHigh    float64 `json:"zone_high"`
	EntryZone   bool    `json:"entry_zone"`
	TimesTested int     `json:"times_tested"`
	Strength    string  `json:"strength"`
}
