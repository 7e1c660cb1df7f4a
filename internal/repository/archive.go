package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/domain"
)

// PredictionArchive persists per-tick prediction rows for long-term
// trend analysis, separate from the serialized result blobs the Store
// keeps. Backed by a pgx connection pool.
type PredictionArchive struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPredictionArchive creates a prediction archive over a pgx pool.
func NewPredictionArchive(db *pgxpool.Pool, logger *logrus.Logger) *PredictionArchive {
	return &PredictionArchive{db: db, log: logger}
}

// ArchivePredictions bulk-inserts every prediction tick of a simulation.
func (a *PredictionArchive) ArchivePredictions(ctx context.Context, simulationID string, predictions []domain.Prediction) error {
	rows := make([][]interface{}, 0, len(predictions))
	for _, p := range predictions {
		risks, err := json.Marshal(p.RiskFactors)
		if err != nil {
			return fmt.Errorf("encoding risk factors: %w", err)
		}
		rows = append(rows, []interface{}{
			simulationID,
			p.DayOffset,
			p.HealthMetrics.MuscleMassKg,
			p.HealthMetrics.BoneDensityTScore,
			p.HealthMetrics.OverallHealthScore(),
			string(p.HealthMetrics.Status()),
			string(risks),
		})
	}

	copied, err := a.db.CopyFrom(ctx,
		pgx.Identifier{"predictions"},
		[]string{"simulation_id", "day_offset", "muscle_mass_kg", "bone_density_t_score", "overall_health_score", "health_status", "risk_factors"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"simulation_id": simulationID,
			"error":         err,
		}).Error("Failed to archive predictions")
		return fmt.Errorf("archiving predictions: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"simulation_id": simulationID,
		"rows":          copied,
	}).Info("Predictions archived")

	return nil
}

// ArchivedTick is one archived prediction row.
type ArchivedTick struct {
	SimulationID       string  `json:"simulation_id"`
	DayOffset          int     `json:"day_offset"`
	MuscleMassKg       float64 `json:"muscle_mass_kg"`
	BoneDensityTScore  float64 `json:"bone_density_t_score"`
	OverallHealthScore float64 `json:"overall_health_score"`
	HealthStatus       string  `json:"health_status"`
}

// ListRange returns the archived ticks of a simulation within a day
// range, ordered by day offset.
func (a *PredictionArchive) ListRange(ctx context.Context, simulationID string, fromDay, toDay int) ([]ArchivedTick, error) {
	rows, err := a.db.Query(ctx, `
		SELECT simulation_id, day_offset, muscle_mass_kg, bone_density_t_score,
			overall_health_score, health_status
		FROM predictions
		WHERE simulation_id = $1 AND day_offset BETWEEN $2 AND $3
		ORDER BY day_offset`,
		simulationID, fromDay, toDay,
	)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	var ticks []ArchivedTick
	for rows.Next() {
		var t ArchivedTick
		if err := rows.Scan(&t.SimulationID, &t.DayOffset, &t.MuscleMassKg,
			&t.BoneDensityTScore, &t.OverallHealthScore, &t.HealthStatus); err != nil {
			return nil, fmt.Errorf("scanning prediction row: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}
