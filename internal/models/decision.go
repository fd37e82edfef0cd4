package models

import (
	"encoding/json"
	"time"
)

// Decision is the output of one signal generation pass. Every field is
// produced fresh per invocation; a Decision is never mutated after it is
// returned.
type Decision struct {
	ID        string
	Timestamp time.Time
	Symbol    string
	Timeframe Timeframe

	Signal     Signal
	Price      *float64
	StopLoss   *float64
	TakeProfit *float64

	// Reason is set on WAIT decisions that were forced by a failure path
	// (no_data, too_short, no_pivots). Empty otherwise.
	Reason string

	SMCSignal Signal
	SMCEvents map[string][]EventPayload
	SMCMeta   *SMCMeta
	Debug     *Debug

	// ATR is the last ATR value for the analyzed timeframe, exposed for
	// orchestrator fallback sizing.
	ATR *float64
}

// EventPayload is the serialized wire form of a detected pattern event.
type EventPayload struct {
	Pattern   string      `json:"pattern"`
	Direction string      `json:"direction"`
	Level     float64     `json:"level"`
	StartIdx  int         `json:"start_idx"`
	EndIdx    *int        `json:"end_idx"`
	Meta      interface{} `json:"meta"`
}

// SMCMeta carries the vote scores and structural metrics alongside the
// final decision.
type SMCMeta struct {
	LongScore   float64      `json:"long_score"`
	ShortScore  float64      `json:"short_score"`
	Equilibrium *RangeLevels `json:"equilibrium"`
	OTEZone     *Band        `json:"ote_zone"`
}

// RangeLevels describes the extremes of a lookback window and their
// midpoint (the equilibrium).
type RangeLevels struct {
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Equilibrium float64 `json:"equilibrium"`
}

// Band is a price zone bounded by Low < High.
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// OTEBand is the optimal-trade-entry zone with its midpoint.
type OTEBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`
}

// StopLevel describes an invalidation-based stop-loss proposal.
type StopLevel struct {
	Price             float64 `json:"sl_price"`
	Kind              string  `json:"sl_type"`
	DistancePct       float64 `json:"distance_pct"`
	InvalidationLevel float64 `json:"invalidation_level"`
	Structure         bool    `json:"is_structure"`
	PivotIdx          *int    `json:"pivot_idx,omitempty"`
}

// Debug exposes the intermediate state of a signal pass for downstream
// tuning and audit.
type Debug struct {
	TF             string     `json:"tf"`
	Bias           Bias       `json:"bias"`
	BOSUp          bool       `json:"bos_up"`
	BOSDown        bool       `json:"bos_dn"`
	ChochUp        bool       `json:"choch_up"`
	ChochDown      bool       `json:"choch_dn"`
	FBO            bool       `json:"fbo"`
	LastHigh       *float64   `json:"last_high"`
	LastLow        *float64   `json:"last_low"`
	ATR            *float64   `json:"atr"`
	SMCSignal      Signal     `json:"smc_signal"`
	SMC            *SMCDebug  `json:"smc"`
	OTEZone        *OTEBand   `json:"ote_zone,omitempty"`
	InvalidationSL *StopLevel `json:"invalidation_sl,omitempty"`
}

// SMCDebug nests the serialized events and meta inside the debug block.
type SMCDebug struct {
	Events map[string][]EventPayload `json:"events"`
	Meta   *SMCMeta                  `json:"meta"`
}

// MarshalJSON renders the orchestrator wire format, including the
// timeframe-keyed ATR field (e.g. "ATR_M15").
func (d *Decision) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"signal":     d.Signal,
		"price":      d.Price,
		"sl":         d.StopLoss,
		"tp":         d.TakeProfit,
		"smc_signal": d.SMCSignal,
		"smc_events": d.SMCEvents,
		"smc_meta":   d.SMCMeta,
		"debug":      d.Debug,
	}
	if d.Reason != "" {
		out["reason"] = d.Reason
	}
	if d.Timeframe != "" {
		out["ATR_"+string(d.Timeframe)] = d.ATR
	}
	return json.Marshal(out)
}
