package broker

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"smc-trader/internal/errors"
	"smc-trader/internal/models"
)

// csvRow is the record-shaped inbound payload of a CSV bar file.
type csvRow struct {
	Time  string  `csv:"time"`
	Open  float64 `csv:"open"`
	High  float64 `csv:"high"`
	Low   float64 `csv:"low"`
	Close float64 `csv:"close"`
}

// CSVProvider reads candles from a CSV file with time,open,high,low,close
// columns. Timestamps may be RFC 3339, "2006-01-02 15:04:05" or unix
// seconds.
type CSVProvider struct {
	path string
}

// NewCSVProvider creates a provider backed by the given file.
func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{path: path}
}

// GetRates loads the file and returns at most count trailing candles in
// ascending time order. Symbol and timeframe are accepted for interface
// compatibility; the file is the single source.
func (p *CSVProvider) GetRates(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, errors.NewDataError("csv", symbol, "open bar file", err)
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError("csv", symbol, "parse bar file", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		ts, err := parseTime(row.Time)
		if err != nil {
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
		})
	}
	return Tail(Normalize(candles), count), nil
}

func parseTime(raw string) (time.Time, error) {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02 15:04:05", raw)
}
