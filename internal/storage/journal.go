package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"

	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// Journal is a write-only SQLite diagnostics log. The engine records level
// changes and order attempts for post-session analysis; nothing is ever read
// back at runtime, and journal failures never stop trading.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS level_changes (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	ts              INTEGER NOT NULL,
	symbol          TEXT NOT NULL,
	prev_bid_micros INTEGER NOT NULL,
	prev_ask_micros INTEGER NOT NULL,
	bid_micros      INTEGER NOT NULL,
	ask_micros      INTEGER NOT NULL,
	spread_micros   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_attempts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	ts           INTEGER NOT NULL,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	qty          INTEGER NOT NULL,
	limit_micros INTEGER NOT NULL,
	order_id     TEXT NOT NULL,
	outcome      TEXT NOT NULL
);
`

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Single writer, no readers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordLevelChange journals a detected level change. Errors are logged, not
// returned; the journal is diagnostics only.
func (j *Journal) RecordLevelChange(lc domain.LevelChange) {
	if j == nil {
		return
	}
	_, err := j.db.Exec(
		`INSERT INTO level_changes (ts, symbol, prev_bid_micros, prev_ask_micros, bid_micros, ask_micros, spread_micros)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(lc.At), lc.Symbol, int64(lc.PrevBid), int64(lc.PrevAsk), int64(lc.Bid), int64(lc.Ask), int64(lc.Spread),
	)
	if err != nil {
		slog.Warn("Journal write failed", "table", "level_changes", "err", err)
	}
}

// RecordOrderAttempt journals an order submission outcome.
func (j *Journal) RecordOrderAttempt(ts quant.TimeStamp, order domain.Order, outcome string) {
	if j == nil {
		return
	}
	_, err := j.db.Exec(
		`INSERT INTO order_attempts (ts, symbol, side, qty, limit_micros, order_id, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(ts), order.Symbol, string(order.Side), order.Qty, int64(order.LimitPriceMicros), order.ID, outcome,
	)
	if err != nil {
		slog.Warn("Journal write failed", "table", "order_attempts", "err", err)
	}
}

// Close flushes and closes the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
