// Package store keeps match history in SQLite: one row per match, the
// fleet's decision events and per-agent travel statistics.
package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/stats"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

type Match struct {
	ID         string `db:"id"`
	Team       int    `db:"team"`
	StartedAt  string `db:"started_at"`
	LastTick   int    `db:"last_tick"`
	Casualties int    `db:"casualties"`
	Delivered  int    `db:"delivered"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		team INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		last_tick INTEGER NOT NULL DEFAULT 0,
		casualties INTEGER NOT NULL DEFAULT 0,
		delivered INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		agent INTEGER NOT NULL,
		other INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		detail TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS travel (
		match_id TEXT NOT NULL,
		agent_id INTEGER NOT NULL,
		empty_distance REAL NOT NULL,
		partial_distance REAL NOT NULL,
		full_distance REAL NOT NULL,
		PRIMARY KEY (match_id, agent_id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_match ON events(match_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartMatch records a new match.
func (db *DB) StartMatch(id string, team int) error {
	_, err := db.conn.Exec(
		"INSERT INTO matches (id, team, started_at) VALUES (?, ?, ?)",
		id, team, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("start match: %w", err)
	}
	slog.Info("match recorded", "match", id, "team", team)
	return nil
}

// UpdateMatch stores the running totals for a match.
func (db *DB) UpdateMatch(id string, tick, casualties, delivered int) error {
	_, err := db.conn.Exec(
		"UPDATE matches SET last_tick = ?, casualties = ?, delivered = ? WHERE id = ?",
		tick, casualties, delivered, id,
	)
	return err
}

func (db *DB) Match(id string) (Match, error) {
	var m Match
	err := db.conn.Get(&m, "SELECT id, team, started_at, last_tick, casualties, delivered FROM matches WHERE id = ?", id)
	return m, err
}

// SaveEvents appends fleet events for a match.
func (db *DB) SaveEvents(match string, events []fleet.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(match_id, tick, kind, agent, other, x, y, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(match, e.Tick, string(e.Kind), e.Agent, e.Other, e.X, e.Y, e.Detail); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// Events returns a match's events, oldest first, up to limit.
func (db *DB) Events(match string, limit int) ([]fleet.Event, error) {
	var events []fleet.Event
	err := db.conn.Select(&events,
		"SELECT tick, kind, agent, other, x, y, detail FROM events WHERE match_id = ? ORDER BY id LIMIT ?",
		match, limit,
	)
	return events, err
}

// SaveTravel replaces the stored travel statistics for a match.
func (db *DB) SaveTravel(match string, t *stats.Tracker) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range t.Agents() {
		tr := t.Agent(id)
		if _, err := tx.Exec(`INSERT OR REPLACE INTO travel
			(match_id, agent_id, empty_distance, partial_distance, full_distance)
			VALUES (?, ?, ?, ?, ?)`,
			match, id, tr.Empty, tr.Partial, tr.Full); err != nil {
			return fmt.Errorf("save travel: %w", err)
		}
	}
	return tx.Commit()
}

// Travel sums the stored travel statistics for a match.
func (db *DB) Travel(match string) (stats.Travel, error) {
	var t stats.Travel
	err := db.conn.Get(&t, `SELECT
		COALESCE(SUM(empty_distance), 0) AS empty_distance,
		COALESCE(SUM(partial_distance), 0) AS partial_distance,
		COALESCE(SUM(full_distance), 0) AS full_distance
		FROM travel WHERE match_id = ?`, match)
	return t, err
}
