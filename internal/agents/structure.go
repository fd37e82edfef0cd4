package agents

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smc-trader/internal/analysis/indicators"
	"smc-trader/internal/analysis/scoring"
	"smc-trader/internal/analysis/smc"
	"smc-trader/internal/broker"
	"smc-trader/internal/errors"
	"smc-trader/internal/models"
)

// Params configures a StructureAgent. Zero numeric fields fall back to the
// defaults of DefaultParams.
type Params struct {
	Lookback       int
	SwingWindow    int
	SMCPivotWindow int
	RetestBars     int
	ATRPeriod      int
	SLMult         float64
	TPMult         float64
	SMCEnabled     bool
	SMCFVGTol      float64
	SMCEqTolerance float64
	Timeframe      models.Timeframe
	Weights        scoring.Weights
}

// DefaultParams returns the standard agent configuration.
func DefaultParams() Params {
	return Params{
		Lookback:       300,
		SwingWindow:    20,
		RetestBars:     3,
		ATRPeriod:      14,
		SLMult:         1.5,
		TPMult:         2.5,
		SMCEnabled:     true,
		SMCFVGTol:      0.0,
		SMCEqTolerance: 0.001,
		Timeframe:      models.TimeframeM15,
	}
}

// normalized fills zero numeric fields with defaults and derives the SMC
// pivot window from the swing window when unset.
func (p Params) normalized() Params {
	d := DefaultParams()
	if p.Lookback <= 0 {
		p.Lookback = d.Lookback
	}
	if p.SwingWindow <= 0 {
		p.SwingWindow = d.SwingWindow
	}
	if p.SMCPivotWindow <= 0 {
		p.SMCPivotWindow = p.SwingWindow / 2
	}
	if p.SMCPivotWindow < 2 {
		p.SMCPivotWindow = 2
	}
	if p.RetestBars <= 0 {
		p.RetestBars = d.RetestBars
	}
	if p.ATRPeriod <= 0 {
		p.ATRPeriod = d.ATRPeriod
	}
	if p.SLMult <= 0 {
		p.SLMult = d.SLMult
	}
	if p.TPMult <= 0 {
		p.TPMult = d.TPMult
	}
	if p.SMCEqTolerance <= 0 {
		p.SMCEqTolerance = d.SMCEqTolerance
	}
	if p.Timeframe == "" {
		p.Timeframe = d.Timeframe
	}
	return p
}

// StructureAgent derives a directional decision from market structure:
// swing pivots, break of structure, change of character, a false-breakout
// filter and the weighted SMC pattern vote. Each call is stateless.
type StructureAgent struct {
	symbol   string
	provider broker.RateProvider
	params   Params
	logger   zerolog.Logger
}

// NewStructureAgent creates a structure agent for one symbol.
func NewStructureAgent(symbol string, provider broker.RateProvider, params Params, logger zerolog.Logger) *StructureAgent {
	return &StructureAgent{
		symbol:   symbol,
		provider: provider,
		params:   params.normalized(),
		logger:   logger.With().Str("agent", "structure").Str("symbol", symbol).Logger(),
	}
}

func (a *StructureAgent) Name() string {
	return "StructureAgent"
}

// GenerateSignal runs one full analysis pass over the given timeframe.
// Every failure path degrades to a WAIT decision with a reason string.
func (a *StructureAgent) GenerateSignal(ctx context.Context, timeframe models.Timeframe) (*models.Decision, error) {
	cfg := a.params
	tf := timeframe
	if tf == "" {
		tf = cfg.Timeframe
	}
	tf = models.Timeframe(strings.ToUpper(string(tf)))

	need := cfg.Lookback
	if cfg.ATRPeriod+10 > need {
		need = cfg.ATRPeriod + 10
	}

	candles, err := a.provider.GetRates(ctx, a.symbol, tf, need)
	if err != nil {
		a.logger.Warn().Err(err).Str("tf", string(tf)).Msg("rate fetch failed")
		return a.wait(tf, errors.ReasonNoData), nil
	}
	if len(candles) < maxInt(100, cfg.ATRPeriod+10) {
		return a.wait(tf, errors.ReasonNoData), nil
	}

	candles = broker.Normalize(candles)
	if len(candles) < maxInt(50, cfg.ATRPeriod+5) {
		return a.wait(tf, errors.ReasonTooShort), nil
	}

	atrLast := a.lastATR(candles, cfg.ATRPeriod)

	pivots := smc.FindPivots(candles, cfg.SwingWindow, true)
	pivHighs := smc.LatestPivots(pivots, smc.PivotHigh, len(pivots))
	pivLows := smc.LatestPivots(pivots, smc.PivotLow, len(pivots))
	if len(pivHighs) == 0 || len(pivLows) == 0 {
		return a.wait(tf, errors.ReasonNoPivots), nil
	}

	lastHighs := smc.LatestPivots(pivHighs, smc.PivotHigh, 2)
	lastLows := smc.LatestPivots(pivLows, smc.PivotLow, 2)
	lastHigh := lastHighs[len(lastHighs)-1]
	lastLow := lastLows[len(lastLows)-1]

	closePx := candles[len(candles)-1].Close
	bias := trendBias(lastHighs, lastLows)

	smcSignal, smcEvents, smcMeta := a.smcSnapshot(candles, cfg)

	bosUp := closePx > lastHigh.Price
	bosDn := closePx < lastLow.Price
	chochUp := bias == models.BiasDown && bosUp
	chochDn := bias == models.BiasUp && bosDn

	fbo := false
	if bosUp || bosDn {
		recent, _ := tailCandles(candles, cfg.RetestBars+1)
		for _, c := range recent {
			if bosUp && c.Close < lastHigh.Price {
				fbo = true
			}
			if bosDn && c.Close > lastLow.Price {
				fbo = true
			}
		}
	}

	raw := models.SignalWait
	switch {
	case fbo:
		raw = models.SignalWait
	case chochUp || bosUp:
		raw = models.SignalLong
	case chochDn || bosDn:
		raw = models.SignalShort
	}

	debug := &models.Debug{
		TF:        string(tf),
		Bias:      bias,
		BOSUp:     bosUp,
		BOSDown:   bosDn,
		ChochUp:   chochUp,
		ChochDown: chochDn,
		FBO:       fbo,
		LastHigh:  floatPtr(lastHigh.Price),
		LastLow:   floatPtr(lastLow.Price),
		ATR:       atrLast,
		SMCSignal: smcSignal,
		SMC: &models.SMCDebug{
			Events: serializeEvents(smcEvents),
			Meta:   smcMeta,
		},
	}

	var price, sl, tp *float64
	if (raw == models.SignalLong || raw == models.SignalShort) && atrLast != nil && *atrLast != 0 {
		price, sl, tp = a.computeLevels(candles, cfg, raw, lastHigh, lastLow, *atrLast, debug)
	}

	decision := &models.Decision{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Symbol:     a.symbol,
		Timeframe:  tf,
		Signal:     raw,
		Price:      price,
		StopLoss:   sl,
		TakeProfit: tp,
		SMCSignal:  smcSignal,
		SMCEvents:  serializeEvents(smcEvents),
		SMCMeta:    smcMeta,
		Debug:      debug,
		ATR:        atrLast,
	}

	a.logger.Info().
		Str("tf", string(tf)).
		Str("signal", string(raw)).
		Str("smc_signal", string(smcSignal)).
		Bool("fbo", fbo).
		Msg("signal generated")
	return decision, nil
}

// smcSnapshot runs the ten pattern detectors and the weighted vote. A
// failing detector is skipped; its contribution is zero.
func (a *StructureAgent) smcSnapshot(candles []models.Candle, cfg Params) (models.Signal, map[string][]smc.PatternEvent, *models.SMCMeta) {
	if !cfg.SMCEnabled {
		return models.SignalWait, nil, nil
	}

	pivots := smc.FindPivots(candles, cfg.SMCPivotWindow, true)

	events := make(map[string][]smc.PatternEvent, len(scoring.DetectorOrder))
	run := func(name string, evts []smc.PatternEvent, err error) {
		if err != nil {
			a.logger.Debug().Err(errors.NewDetectorError(name, err)).Msg("detector skipped")
			events[name] = nil
			return
		}
		events[name] = evts
	}

	bosEvts, bosErr := smc.DetectBOS(candles, pivots, smc.DefaultTolerance)
	run(scoring.NameBOS, bosEvts, bosErr)
	chochEvts, chochErr := smc.DetectCHoCH(candles, pivots, smc.DefaultTolerance)
	run(scoring.NameCHoCH, chochEvts, chochErr)
	fvgEvts, fvgErr := smc.DetectFVG(candles, smc.DefaultFVGLookback, cfg.SMCFVGTol)
	run(scoring.NameFVG, fvgEvts, fvgErr)
	eqhEvts, eqhErr := smc.DetectEqualHighs(candles, smc.DefaultEqualLookback, cfg.SMCEqTolerance)
	run(scoring.NameEQH, eqhEvts, eqhErr)
	eqlEvts, eqlErr := smc.DetectEqualLows(candles, smc.DefaultEqualLookback, cfg.SMCEqTolerance)
	run(scoring.NameEQL, eqlEvts, eqlErr)
	obEvts, obErr := smc.DetectOrderBlocks(candles, pivots, smc.DefaultOrderBlockLookback)
	run(scoring.NameOrderBlocks, obEvts, obErr)
	bbEvts, bbErr := smc.DetectBreakerBlocks(candles, pivots, smc.DefaultTolerance)
	run(scoring.NameBreakerBlocks, bbEvts, bbErr)
	indEvts, indErr := smc.DetectInducement(candles, smc.DefaultInducementLookback, smc.DefaultInducementTol)
	run(scoring.NameInducement, indEvts, indErr)
	sweepEvts, sweepErr := smc.DetectLiquiditySweep(candles, smc.DefaultSweepLookback)
	run(scoring.NameLiquiditySweep, sweepEvts, sweepErr)
	mbEvts, mbErr := smc.DetectMitigationBlock(candles, pivots, smc.DefaultMitigationLookback)
	run(scoring.NameMitigationBlock, mbEvts, mbErr)

	signal, longScore, shortScore := scoring.Vote(events, cfg.Weights)

	equilibrium, _ := smc.ComputeEquilibrium(candles, smc.DefaultEquilibriumLookback)
	meta := &models.SMCMeta{
		LongScore:   round3(longScore),
		ShortScore:  round3(shortScore),
		Equilibrium: equilibrium,
		OTEZone:     smc.ComputeOTEZone(candles, smc.DefaultOTELookback),
	}
	return signal, events, meta
}

// computeLevels derives entry/stop/target from the most recent swing leg.
// The entry is the OTE midpoint; the stop prefers the structural
// invalidation level with an ATR fallback; the target is a reward multiple
// of risk. Degenerate levels are nulled, not emitted.
func (a *StructureAgent) computeLevels(candles []models.Candle, cfg Params, raw models.Signal, lastHigh, lastLow smc.Pivot, atr float64, debug *models.Debug) (*float64, *float64, *float64) {
	swLow := lastLow.Price
	swHigh := lastHigh.Price
	longLeg := lastHigh.Index > lastLow.Index

	zLow, zHigh, zMid := oteZone(longLeg, swLow, swHigh)
	debug.OTEZone = &models.OTEBand{Low: zLow, High: zHigh, Mid: zMid}

	price := zMid
	var sl float64
	haveSL := false

	direction := smc.Long
	if raw == models.SignalShort {
		direction = smc.Short
	}
	if stop := smc.ComputeInvalidationStop(candles, direction, smc.DefaultInvalidationLookback, smc.DefaultSLBufferPct, nil); stop != nil && stop.Price != 0 {
		sl = stop.Price
		haveSL = true
		debug.InvalidationSL = stop
	}

	if !haveSL {
		if raw == models.SignalLong {
			sl = math.Min(swLow, price) - cfg.SLMult*atr
		} else {
			sl = math.Max(swHigh, price) + cfg.SLMult*atr
		}
	}

	var tp float64
	if raw == models.SignalLong {
		risk := price - sl
		if risk > 0 {
			tp = price + cfg.TPMult*risk
		} else {
			tp = price + cfg.TPMult*atr
		}
	} else {
		risk := sl - price
		if risk > 0 {
			tp = price - cfg.TPMult*risk
		} else {
			tp = price - cfg.TPMult*atr
		}
	}

	if sl == tp || math.Abs(tp-price) < 1e-9 || math.Abs(price-sl) < 1e-9 {
		return floatPtr(price), nil, nil
	}
	if raw == models.SignalLong && !(sl < price && price < tp) {
		return floatPtr(price), nil, nil
	}
	if raw == models.SignalShort && !(tp < price && price < sl) {
		return floatPtr(price), nil, nil
	}
	return floatPtr(price), floatPtr(sl), floatPtr(tp)
}

// lastATR returns the most recent ATR value, nil while the series is still
// inside the warmup window.
func (a *StructureAgent) lastATR(candles []models.Candle, period int) *float64 {
	last, err := indicators.NewATR(period).Last(candles)
	if err != nil || math.IsNaN(last) {
		return nil
	}
	return floatPtr(last)
}

func (a *StructureAgent) wait(tf models.Timeframe, reason string) *models.Decision {
	return &models.Decision{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Symbol:    a.symbol,
		Timeframe: tf,
		Signal:    models.SignalWait,
		SMCSignal: models.SignalWait,
		Reason:    reason,
	}
}

// trendBias classifies structure from the last two swing extremes per
// side: higher high with higher low is up, lower high with lower low is
// down, anything else is neutral.
func trendBias(highs, lows []smc.Pivot) models.Bias {
	if len(highs) < 2 || len(lows) < 2 {
		return models.BiasNone
	}
	h1, h2 := highs[len(highs)-1].Price, highs[len(highs)-2].Price
	l1, l2 := lows[len(lows)-1].Price, lows[len(lows)-2].Price
	if h1 > h2 && l1 > l2 {
		return models.BiasUp
	}
	if h1 < h2 && l1 < l2 {
		return models.BiasDown
	}
	return models.BiasNone
}

// oteZone returns the 62%-79% optimal trade entry band of the swing leg
// with its midpoint, bounds ordered low to high.
func oteZone(longLeg bool, swingLow, swingHigh float64) (float64, float64, float64) {
	length := swingHigh - swingLow
	var z1, z2 float64
	if longLeg {
		z1 = swingLow + 0.62*length
		z2 = swingLow + 0.79*length
	} else {
		z1 = swingHigh - 0.79*length
		z2 = swingHigh - 0.62*length
	}
	return math.Min(z1, z2), math.Max(z1, z2), (z1 + z2) / 2.0
}

func serializeEvents(events map[string][]smc.PatternEvent) map[string][]models.EventPayload {
	serialized := make(map[string][]models.EventPayload, len(events))
	for name, evts := range events {
		payloads := make([]models.EventPayload, 0, len(evts))
		for _, evt := range evts {
			payloads = append(payloads, evt.Payload())
		}
		serialized[name] = payloads
	}
	return serialized
}

func tailCandles(candles []models.Candle, n int) ([]models.Candle, int) {
	if n >= len(candles) {
		return candles, 0
	}
	offset := len(candles) - n
	return candles[offset:], offset
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func floatPtr(v float64) *float64 {
	return &v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
