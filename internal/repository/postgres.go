package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahse-server/internal/domain"

	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL. It
// expects the schema to already exist (provisioned by the operator).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL simulation store over an existing
// connection.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDSN creates a PostgreSQL simulation store from a
// connection string.
func NewPostgresStoreFromDSN(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewPostgresStore(db)
}

// Save stores a simulation record.
func (s *PostgresStore) Save(ctx context.Context, record *SimulationRecord) error {
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*SimulationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, astronaut_id, astronaut_name, mission_type, duration_days,
			simulation_accuracy, success_probability, request_key, result, created_at
		FROM simulations
		WHERE id = $1
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
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*SimulationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, astronaut_id, astronaut_name, mission_type, duration_days,
			simulation_accuracy, success_probability, request_key, result, created_at
		FROM simulations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM simulations").Scan(&count)
	return count, err
}

// Delete removes a simulation record by ID. Returns domain.ErrNotFound
// when no record exists.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM simulations WHERE id = $1", id)
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
