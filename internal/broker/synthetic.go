package broker

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"smc-trader/internal/models"
)

// SyntheticProvider generates a deterministic random-walk candle series.
// The same symbol, timeframe and count always produce the same bars, which
// makes it suitable for dry runs and tests.
type SyntheticProvider struct {
	BasePrice  float64
	Volatility float64
	Start      time.Time
}

// NewSyntheticProvider creates a generator around a base price.
func NewSyntheticProvider(basePrice float64) *SyntheticProvider {
	return &SyntheticProvider{
		BasePrice:  basePrice,
		Volatility: 0.002,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// GetRates generates count candles ending now-ish, spaced by the
// timeframe duration.
func (p *SyntheticProvider) GetRates(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(seedFor(symbol, timeframe)))
	step := timeframeDuration(timeframe)

	price := p.BasePrice
	candles := make([]models.Candle, 0, count)
	for i := 0; i < count; i++ {
		drift := rng.NormFloat64() * p.Volatility * price
		open := price
		close := price + drift
		spread := math.Abs(drift) + rng.Float64()*p.Volatility*price
		high := math.Max(open, close) + spread/2
		low := math.Min(open, close) - spread/2

		candles = append(candles, models.Candle{
			Timestamp: p.Start.Add(time.Duration(i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
		})
		price = close
	}
	return candles, nil
}

func seedFor(symbol string, timeframe models.Timeframe) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(timeframe))
	return int64(h.Sum64())
}

func timeframeDuration(tf models.Timeframe) time.Duration {
	switch tf {
	case models.TimeframeM1:
		return time.Minute
	case models.TimeframeM5:
		return 5 * time.Minute
	case models.TimeframeM15:
		return 15 * time.Minute
	case models.TimeframeM30:
		return 30 * time.Minute
	case models.TimeframeH1:
		return time.Hour
	case models.TimeframeH4:
		return 4 * time.Hour
	case models.TimeframeD1:
		return 24 * time.Hour
	default:
		return 15 * time.Minute
	}
}
