// Package persistence records game sessions to SQLite and to compressed
// trace files. Records are append-only and never read back into a game.
package persistence

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/market-sim/internal/engine"
)

// DB wraps a SQLite connection used as a session journal.
type DB struct {
	conn *sqlx.DB
}

// Session is one journaled Play-to-exit run.
type Session struct {
	ID        string `db:"id"`
	StartedAt int64  `db:"started_at"` // Unix nanoseconds
	Events    int    `db:"events"`
}

// Sample is one good's quantity at a displayed tick.
type Sample struct {
	SessionID string `db:"session_id"`
	Tick      int    `db:"tick"`
	Frame     uint64 `db:"frame"`
	Good      string `db:"good"`
	Quantity  uint64 `db:"quantity"`
}

// Open opens or creates a journal. ":memory:" keeps it in memory for the life
// of the process.
func Open(dsn string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: an in-memory database exists per connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		frame INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		frame INTEGER NOT NULL,
		good TEXT NOT NULL,
		quantity INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	CREATE INDEX IF NOT EXISTS idx_samples_session_good ON ledger_samples(session_id, good);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordEvent appends an event, registering its session on first sight.
func (db *DB) RecordEvent(e engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if e.SessionID != "" {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)",
			e.SessionID, e.At.UnixNano(),
		); err != nil {
			return fmt.Errorf("insert session %s: %w", e.SessionID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO events (session_id, frame, tick, category, description, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, int64(e.Frame), e.Tick, e.Category, e.Description, e.At.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return tx.Commit()
}

// RecordTick stores the ledger as it stood at a displayed tick.
func (db *DB) RecordTick(s engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO ledger_samples
		(session_id, tick, frame, good, quantity) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range s.Goods {
		// SQLite integers are signed; a saturated quantity is stored capped.
		qty := entry.Quantity
		if qty > math.MaxInt64 {
			qty = math.MaxInt64
		}
		if _, err := stmt.Exec(s.SessionID, s.Time, int64(s.Frame), entry.Good, int64(qty)); err != nil {
			return fmt.Errorf("insert sample %s@%d: %w", entry.Good, s.Time, err)
		}
	}

	return tx.Commit()
}

type eventRow struct {
	SessionID   string `db:"session_id"`
	Frame       int64  `db:"frame"`
	Tick        int    `db:"tick"`
	Category    string `db:"category"`
	Description string `db:"description"`
	At          int64  `db:"at"`
}

func (r eventRow) event() engine.Event {
	return engine.Event{
		SessionID:   r.SessionID,
		Frame:       uint64(r.Frame),
		Tick:        r.Tick,
		Category:    r.Category,
		Description: r.Description,
		At:          time.Unix(0, r.At).UTC(),
	}
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		`SELECT session_id, frame, tick, category, description, at
		FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[i] = r.event()
	}
	return events, nil
}

// Sessions lists journaled sessions in start order with their event counts.
func (db *DB) Sessions() ([]Session, error) {
	var sessions []Session
	err := db.conn.Select(&sessions, `
		SELECT s.id, s.started_at, COUNT(e.id) AS events
		FROM sessions s LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id, s.started_at
		ORDER BY s.started_at, s.id`)
	return sessions, err
}

// LedgerHistory returns one good's sampled quantities over a session, oldest first.
func (db *DB) LedgerHistory(sessionID, good string) ([]Sample, error) {
	var samples []Sample
	err := db.conn.Select(&samples, `
		SELECT session_id, tick, frame, good, quantity
		FROM ledger_samples WHERE session_id = ? AND good = ?
		ORDER BY id`,
		sessionID, good,
	)
	return samples, err
}

// LogSummary writes a one-line summary of the journal.
func (db *DB) LogSummary() {
	var events, samples int
	if err := db.conn.Get(&events, "SELECT COUNT(*) FROM events"); err != nil {
		slog.Error("journal summary failed", "error", err)
		return
	}
	if err := db.conn.Get(&samples, "SELECT COUNT(*) FROM ledger_samples"); err != nil {
		slog.Error("journal summary failed", "error", err)
		return
	}
	slog.Info("journal summary", "events", events, "ledger_samples", samples)
}
