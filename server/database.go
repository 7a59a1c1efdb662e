package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// RunSummary is one finished session
type RunSummary struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sid"`
	Name         string    `json:"name"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	Ticks        uint64    `json:"ticks"`
	PeakPilots   int       `json:"peak_pilots"`
	BulletsFired int       `json:"bullets_fired"`
	Hits         int       `json:"hits"`
	Grazes       int       `json:"grazes"`
	BestPilot    string    `json:"best_pilot"`
	BestScore    int       `json:"best_score"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		peak_pilots INTEGER NOT NULL DEFAULT 0,
		bullets_fired INTEGER NOT NULL DEFAULT 0,
		hits INTEGER NOT NULL DEFAULT 0,
		grazes INTEGER NOT NULL DEFAULT 0,
		best_pilot TEXT NOT NULL DEFAULT '',
		best_score INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_ended ON runs(ended_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

// GetSetting returns a setting value, or "" if unset
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// SaveRun records a finished session and returns its row ID
func (db *DB) SaveRun(r RunSummary) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO runs (session_id, name, started_at, ended_at, ticks, peak_pilots,
			bullets_fired, hits, grazes, best_pilot, best_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Name, r.StartedAt.UTC(), r.EndedAt.UTC(), int64(r.Ticks), r.PeakPilots,
		r.BulletsFired, r.Hits, r.Grazes, r.BestPilot, r.BestScore,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns the latest finished sessions, newest first
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, name, started_at, ended_at, ticks, peak_pilots,
			bullets_fired, hits, grazes, best_pilot, best_score
		FROM runs ORDER BY ended_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var ticks int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Name, &r.StartedAt, &r.EndedAt, &ticks,
			&r.PeakPilots, &r.BulletsFired, &r.Hits, &r.Grazes, &r.BestPilot, &r.BestScore); err != nil {
			return nil, err
		}
		r.Ticks = uint64(ticks)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run by ID, or nil if missing
func (db *DB) GetRun(id int64) (*RunSummary, error) {
	var r RunSummary
	var ticks int64
	err := db.conn.QueryRow(`
		SELECT id, session_id, name, started_at, ended_at, ticks, peak_pilots,
			bullets_fired, hits, grazes, best_pilot, best_score
		FROM runs WHERE id = ?`, id).Scan(&r.ID, &r.SessionID, &r.Name, &r.StartedAt, &r.EndedAt, &ticks,
		&r.PeakPilots, &r.BulletsFired, &r.Hits, &r.Grazes, &r.BestPilot, &r.BestScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Ticks = uint64(ticks)
	return &r, nil
}
