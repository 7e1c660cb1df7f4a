// Package repository persists simulation results. Two Store
// implementations exist: an embedded SQLite store that manages its own
// schema, and a PostgreSQL store that expects the schema to be
// provisioned by the operator. A separate pgx-backed archive stores the
// per-tick prediction rows for long-term analysis.
package repository

import (
	"context"
	"time"

	"github.com/ahse-server/internal/domain"
)

// SimulationRecord is a stored simulation result with its request
// context. The full result is serialized as a JSON column; the scalar
// columns exist for listing and filtering without deserialization.
type SimulationRecord struct {
	ID                 string                   `json:"id"`
	AstronautID        string                   `json:"astronaut_id"`
	AstronautName      string                   `json:"astronaut_name"`
	MissionType        string                   `json:"mission_type"`
	DurationDays       int                      `json:"duration_days"`
	SimulationAccuracy float64                  `json:"simulation_accuracy"`
	SuccessProbability float64                  `json:"success_probability"`
	RequestKey         string                   `json:"request_key,omitempty"`
	Result             *domain.SimulationResult `json:"result"`
	CreatedAt          time.Time                `json:"created_at"`
}

// Store is the persistence contract for simulation records.
type Store interface {
	Save(ctx context.Context, record *SimulationRecord) error
	Get(ctx context.Context, id string) (*SimulationRecord, error)
	List(ctx context.Context, limit, offset int) ([]*SimulationRecord, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
