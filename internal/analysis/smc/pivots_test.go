package smc

import (
	"testing"

	"smc-trader/internal/models"
)

// bar builds a candle from explicit prices.
func bar(open, high, low, close float64) models.Candle {
	return models.Candle{Open: open, High: high, Low: low, Close: close}
}

// zigzagBars builds candles whose open/close follow the given values with
// wicks extending halfRange above and below.
func zigzagBars(values []float64, halfRange float64) []models.Candle {
	candles := make([]models.Candle, len(values))
	for i, v := range values {
		candles[i] = bar(v, v+halfRange, v-halfRange, v)
	}
	return candles
}

func TestFindPivotsPeakAndTrough(t *testing.T) {
	peaks := zigzagBars([]float64{1, 2, 3, 2, 1}, 0.5)
	pivots := FindPivots(peaks, 1, true)
	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d (%v)", len(pivots), pivots)
	}
	p := pivots[0]
	if p.Index != 2 || p.Kind != PivotHigh || p.Price != 3.5 {
		t.Fatalf("unexpected pivot %+v", p)
	}

	troughs := zigzagBars([]float64{3, 2, 1, 2, 3}, 0.5)
	pivots = FindPivots(troughs, 1, true)
	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d", len(pivots))
	}
	p = pivots[0]
	if p.Index != 2 || p.Kind != PivotLow || p.Price != 0.5 {
		t.Fatalf("unexpected pivot %+v", p)
	}
}

func TestFindPivotsMixedSeries(t *testing.T) {
	candles := []models.Candle{
		bar(3, 5, 2, 4),
		bar(4, 6, 3, 5),
		bar(5, 7, 1.8, 3),
		bar(2, 4.5, 0.5, 2),
		bar(2, 3.5, 1.7, 3),
		bar(3, 4.2, 1.9, 4),
	}
	pivots := FindPivots(candles, 1, true)
	if len(pivots) != 2 {
		t.Fatalf("expected one high and one low, got %v", pivots)
	}
	if pivots[0].Index != 2 || pivots[0].Kind != PivotHigh || pivots[0].Price != 7 {
		t.Fatalf("unexpected high pivot %+v", pivots[0])
	}
	if pivots[1].Index != 3 || pivots[1].Kind != PivotLow || pivots[1].Price != 0.5 {
		t.Fatalf("unexpected low pivot %+v", pivots[1])
	}
}

func TestFindPivotsBarCanBeBoth(t *testing.T) {
	candles := []models.Candle{
		bar(4, 5, 3, 4),
		bar(5, 10, 0, 5),
		bar(4, 5, 3, 4),
	}
	pivots := FindPivots(candles, 1, true)
	if len(pivots) != 2 {
		t.Fatalf("expected high and low pivot on the same bar, got %v", pivots)
	}
	if pivots[0].Index != 1 || pivots[1].Index != 1 {
		t.Fatalf("pivots not on middle bar: %v", pivots)
	}
	if pivots[0].Kind != PivotHigh || pivots[1].Kind != PivotLow {
		t.Fatalf("unexpected pivot kinds: %v", pivots)
	}
}

func TestFindPivotsWindowCoercion(t *testing.T) {
	candles := zigzagBars([]float64{1, 2, 3, 2, 1}, 0.5)
	coerced := FindPivots(candles, 0, true)
	explicit := FindPivots(candles, 1, true)
	if len(coerced) != len(explicit) {
		t.Fatalf("window 0 not coerced to 1: %v vs %v", coerced, explicit)
	}
}

func TestFindPivotsShortSeries(t *testing.T) {
	candles := zigzagBars([]float64{1, 2}, 0.5)
	if pivots := FindPivots(candles, 1, true); len(pivots) != 0 {
		t.Fatalf("expected no pivots on short series, got %v", pivots)
	}
	if pivots := FindPivots(nil, 3, true); len(pivots) != 0 {
		t.Fatalf("expected no pivots on empty series, got %v", pivots)
	}
}

func TestFindPivotsCloseOnly(t *testing.T) {
	// Wide wicks but flat closes: with useWicks=false no extremes exist
	// beyond the close peak.
	candles := []models.Candle{
		bar(1, 9, 0, 1),
		bar(2, 9, 0, 2),
		bar(3, 9, 0, 3),
		bar(2, 9, 0, 2),
		bar(1, 9, 0, 1),
	}
	pivots := FindPivots(candles, 1, false)
	if len(pivots) != 1 {
		t.Fatalf("expected 1 close pivot, got %v", pivots)
	}
	if pivots[0].Price != 3 || pivots[0].Kind != PivotHigh {
		t.Fatalf("unexpected pivot %+v", pivots[0])
	}
}

func TestLatestPivots(t *testing.T) {
	pivots := []Pivot{
		{Index: 1, Price: 105, Kind: PivotHigh},
		{Index: 3, Price: 95, Kind: PivotLow},
		{Index: 4, Price: 100, Kind: PivotHigh},
		{Index: 6, Price: 97, Kind: PivotLow},
	}
	highs := LatestPivots(pivots, PivotHigh, 2)
	if len(highs) != 2 || highs[1].Price != 100 {
		t.Fatalf("unexpected highs %v", highs)
	}
	lows := LatestPivots(pivots, PivotLow, 1)
	if len(lows) != 1 || lows[0].Index != 6 {
		t.Fatalf("unexpected lows %v", lows)
	}
}
