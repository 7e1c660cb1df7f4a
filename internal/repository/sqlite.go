package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ahse-server/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite simulation store. It creates the
// database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		astronaut_id TEXT NOT NULL,
		astronaut_name TEXT NOT NULL,
		mission_type TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		simulation_accuracy REAL NOT NULL,
		success_probability REAL NOT NULL,
		request_key TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_simulations_astronaut_id ON simulations(astronaut_id);
	CREATE INDEX IF NOT EXISTS idx_simulations_mission_type ON simulations(mission_type);
	CREATE INDEX IF NOT EXISTS idx_simulations_created_at ON simulations(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into a SimulationRecord, deserializing the
// result payload.
func scanRecord(s scanner) (*SimulationRecord, error) {
	rec := &SimulationRecord{}
	var payload string

	err := s.Scan(
		&rec.ID, &rec.AstronautID, &rec.AstronautName, &rec.MissionType,
		&rec.DurationDays, &rec.SimulationAccuracy, &rec.SuccessProbability,
		&rec.RequestKey, &payload, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	result := &domain.SimulationResult{}
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return nil, fmt.Errorf("failed to decode result payload: %w", err)
	}
	rec.Result = result
	return rec, nil
}

// Save stores a simulation record. The record ID must be set by the
// caller; re-saving an existing ID is rejected by the primary key.
func (s *SQLiteStore) Save(ctx context.Context, record *SimulationRecord) error {
	if record.ID == "" {
		return domain.NewValidationError("id", "is required", record.ID)
	}
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result payload: %w", err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulations (
			id, astronaut_id, astronaut_name, mission_type, duration_days,
			simulation_accuracy, success_probability, request_key, result, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.AstronautID,
		record.AstronautName,
		record.MissionType,
		record.DurationDays,
		record.SimulationAccuracy,
		record.SuccessProbability,
		record.RequestKey,
		string(payload),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves a simulation record by ID. Returns domain.ErrNotFound
// when no record exists.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*SimulationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, astronaut_id, astronaut_name, mission_type, duration_days,
			simulation_accuracy, success_probability, request_key, result, created_at
		FROM simulations
		WHERE id = ?
		LIMIT 1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns simulation records, newest first, with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*SimulationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, astronaut_id, astronaut_name, mission_type, duration_days,
			simulation_accuracy, success_probability, request_key, result, created_at
		FROM simulations
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*SimulationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the total number of stored simulations.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM simulations").Scan(&count)
	return count, err
}

// Delete removes a simulation record by ID. Returns domain.ErrNotFound
// when no record exists.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM simulations WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
