// Package store provides data persistence for emitted decisions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"smc-trader/internal/models"
)

// SQLiteStore is the decision journal. The signal core itself is
// stateless; persistence happens at the orchestration boundary.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the journal database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		signal TEXT NOT NULL,
		price REAL,
		sl REAL,
		tp REAL,
		reason TEXT,
		smc_signal TEXT,
		long_score REAL,
		short_score REAL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_symbol_time
		ON decisions(symbol, timeframe, timestamp DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveDecision persists one decision, including its full serialized
// payload.
func (s *SQLiteStore) SaveDecision(ctx context.Context, decision *models.Decision) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to serialize decision: %w", err)
	}

	var longScore, shortScore sql.NullFloat64
	if decision.SMCMeta != nil {
		longScore = sql.NullFloat64{Float64: decision.SMCMeta.LongScore, Valid: true}
		shortScore = sql.NullFloat64{Float64: decision.SMCMeta.ShortScore, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions
			(id, timestamp, symbol, timeframe, signal, price, sl, tp,
			 reason, smc_signal, long_score, short_score, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		decision.ID,
		decision.Timestamp,
		decision.Symbol,
		string(decision.Timeframe),
		string(decision.Signal),
		nullFloat(decision.Price),
		nullFloat(decision.StopLoss),
		nullFloat(decision.TakeProfit),
		decision.Reason,
		string(decision.SMCSignal),
		longScore,
		shortScore,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// DecisionRecord is a stored decision row.
type DecisionRecord struct {
	ID         string
	Timestamp  time.Time
	Symbol     string
	Timeframe  string
	Signal     string
	Price      *float64
	StopLoss   *float64
	TakeProfit *float64
	Reason     string
	SMCSignal  string
	LongScore  *float64
	ShortScore *float64
	Payload    string
}

// DecisionFilter narrows ListDecisions results. Zero values mean "any".
type DecisionFilter struct {
	Symbol    string
	Timeframe string
	Signal    string
	Limit     int
}

// ListDecisions returns stored decisions, most recent first.
func (s *SQLiteStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionRecord, error) {
	query := `
		SELECT id, timestamp, symbol, timeframe, signal, price, sl, tp,
		       reason, smc_signal, long_score, short_score, payload
		FROM decisions WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Timeframe != "" {
		query += " AND timeframe = ?"
		args = append(args, filter.Timeframe)
	}
	if filter.Signal != "" {
		query += " AND signal = ?"
		args = append(args, filter.Signal)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var r DecisionRecord
		var price, sl, tp, longScore, shortScore sql.NullFloat64
		var reason, smcSignal sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Symbol, &r.Timeframe, &r.Signal,
			&price, &sl, &tp, &reason, &smcSignal,
			&longScore, &shortScore, &r.Payload,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		r.Price = fromNullFloat(price)
		r.StopLoss = fromNullFloat(sl)
		r.TakeProfit = fromNullFloat(tp)
		r.Reason = reason.String
		r.SMCSignal = smcSignal.String
		r.LongScore = fromNullFloat(longScore)
		r.ShortScore = fromNullFloat(shortScore)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetDecisionByID returns a single stored decision, or nil when absent.
func (s *SQLiteStore) GetDecisionByID(ctx context.Context, id string) (*DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, symbol, timeframe, signal, price, sl, tp,
		       reason, smc_signal, long_score, short_score, payload
		FROM decisions WHERE id = ?`, id)

	var r DecisionRecord
	var price, sl, tp, longScore, shortScore sql.NullFloat64
	var reason, smcSignal sql.NullString
	err := row.Scan(
		&r.ID, &r.Timestamp, &r.Symbol, &r.Timeframe, &r.Signal,
		&price, &sl, &tp, &reason, &smcSignal,
		&longScore, &shortScore, &r.Payload,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decision: %w", err)
	}
	r.Price = fromNullFloat(price)
	r.StopLoss = fromNullFloat(sl)
	r.TakeProfit = fromNullFloat(tp)
	r.Reason = reason.String
	r.SMCSignal = smcSignal.String
	r.LongScore = fromNullFloat(longScore)
	r.ShortScore = fromNullFloat(shortScore)
	return &r, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
