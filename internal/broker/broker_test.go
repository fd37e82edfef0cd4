package broker

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"smc-trader/internal/models"
)

func TestNormalizeDropsAndSorts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: base.Add(2 * time.Minute), Open: 3, High: 4, Low: 2, Close: 3},
		{Open: 1, High: 2, Low: 1, Close: 1}, // zero timestamp
		{Timestamp: base, Open: 1, High: 2, Low: 1, Close: 1},
		{Timestamp: base.Add(time.Minute), Open: 2, High: 3, Low: 1, Close: math.NaN()},
	}
	out := Normalize(candles)
	if len(out) != 2 {
		t.Fatalf("expected dirty rows dropped, got %v", out)
	}
	if !out[0].Timestamp.Equal(base) || !out[1].Timestamp.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("expected ascending order, got %v", out)
	}
}

func TestFromColumns(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := Columns{
		Time:  []time.Time{base.Add(time.Minute), base},
		Open:  []float64{2, 1},
		High:  []float64{3, 2},
		Low:   []float64{1, 0.5},
		Close: []float64{2.5, 1.5},
	}
	candles, err := FromColumns(cols)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 2 || candles[0].Close != 1.5 {
		t.Fatalf("expected sorted candles, got %v", candles)
	}
}

func TestFromColumnsLengthMismatch(t *testing.T) {
	cols := Columns{
		Time: []time.Time{time.Now()},
		Open: []float64{1, 2},
	}
	if _, err := FromColumns(cols); err == nil {
		t.Fatal("expected a length mismatch error")
	}
}

func TestTail(t *testing.T) {
	candles := make([]models.Candle, 5)
	if got := Tail(candles, 3); len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got := Tail(candles, 0); len(got) != 5 {
		t.Fatalf("expected full slice on zero count, got %d", len(got))
	}
	if got := Tail(candles, 10); len(got) != 5 {
		t.Fatalf("expected full slice on large count, got %d", len(got))
	}
}

func TestSyntheticProviderDeterministic(t *testing.T) {
	provider := NewSyntheticProvider(100)
	ctx := context.Background()

	first, err := provider.GetRates(ctx, "EURUSD", models.TimeframeM15, 200)
	if err != nil {
		t.Fatal(err)
	}
	second, err := provider.GetRates(ctx, "EURUSD", models.TimeframeM15, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same symbol and timeframe should reproduce the same series")
	}

	other, err := provider.GetRates(ctx, "GBPUSD", models.TimeframeM15, 200)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(first, other) {
		t.Fatal("different symbols should not share a series")
	}
}

func TestSyntheticProviderShape(t *testing.T) {
	provider := NewSyntheticProvider(100)
	candles, err := provider.GetRates(context.Background(), "EURUSD", models.TimeframeH1, 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 300 {
		t.Fatalf("expected 300 candles, got %d", len(candles))
	}
	for i, c := range candles {
		if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
			t.Fatalf("candle %d violates OHLC bounds: %+v", i, c)
		}
		if i > 0 && !candles[i-1].Timestamp.Before(c.Timestamp) {
			t.Fatalf("timestamps not ascending at %d", i)
		}
		if i > 0 {
			if got := c.Timestamp.Sub(candles[i-1].Timestamp); got != time.Hour {
				t.Fatalf("expected hourly spacing, got %v", got)
			}
		}
	}
}

func TestSyntheticProviderEmptyCount(t *testing.T) {
	provider := NewSyntheticProvider(100)
	candles, err := provider.GetRates(context.Background(), "EURUSD", models.TimeframeM15, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 0 {
		t.Fatalf("expected no candles, got %d", len(candles))
	}
}

func TestCSVProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	content := "time,open,high,low,close\n" +
		"2024-01-01T00:15:00Z,101,102,100,101.5\n" +
		"1704067200,100,101,99,100.5\n" + // 2024-01-01T00:00:00Z
		"2024-01-01 00:30:00,101.5,103,101,102\n" +
		"not-a-time,1,2,0,1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := NewCSVProvider(path)
	candles, err := provider.GetRates(context.Background(), "EURUSD", models.TimeframeM15, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 parsed candles, got %v", candles)
	}
	if candles[0].Close != 100.5 || candles[2].Close != 102 {
		t.Fatalf("expected ascending time order, got %v", candles)
	}

	// count trims from the front.
	trimmed, err := provider.GetRates(context.Background(), "EURUSD", models.TimeframeM15, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(trimmed) != 2 || trimmed[0].Close != 101.5 {
		t.Fatalf("expected trailing window, got %v", trimmed)
	}
}

func TestCSVProviderMissingFile(t *testing.T) {
	provider := NewCSVProvider(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := provider.GetRates(context.Background(), "EURUSD", models.TimeframeM15, 10); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
