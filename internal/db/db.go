// Package db stores the history of geoprocessing runs in sqlite.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlite connection holding run history.
type DB struct {
	*sql.DB
}

// Run is one recorded pipeline execution.
type Run struct {
	ID         string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Distances  string    `json:"distances"`
	Units      string    `json:"units"`
	PointPath  string    `json:"point_path"`
	BufferPath string    `json:"buffer_path"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// NewDB opens (creating if necessary) the run history database at path and
// applies any pending migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{conn}
	if err := db.migrateUp(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrateUp runs all pending migrations from the embedded sources.
func (db *DB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// RecordRun inserts a run into the history.
func (db *DB) RecordRun(r Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (run_id, created_at, latitude, longitude, distances, units,
			point_path, buffer_path, status, message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Latitude, r.Longitude, r.Distances, r.Units,
		r.PointPath, r.BufferPath, r.Status, r.Message, r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, created_at, latitude, longitude, distances, units,
			point_path, buffer_path, status, message, duration_ms
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var message sql.NullString
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Latitude, &r.Longitude,
			&r.Distances, &r.Units, &r.PointPath, &r.BufferPath,
			&r.Status, &message, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Message = message.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns a single run by ID.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	var message sql.NullString
	err := db.QueryRow(`
		SELECT run_id, created_at, latitude, longitude, distances, units,
			point_path, buffer_path, status, message, duration_ms
		FROM runs WHERE run_id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.Latitude, &r.Longitude,
			&r.Distances, &r.Units, &r.PointPath, &r.BufferPath,
			&r.Status, &message, &r.DurationMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	r.Message = message.String
	return r, nil
}
