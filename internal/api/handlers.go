package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/cache"
	"github.com/ahse-server/internal/domain"
	"github.com/ahse-server/internal/repository"
)

// SimulationRequest is the POST /simulate payload.
type SimulationRequest struct {
	Astronaut domain.AstronautProfile `json:"astronaut"`
	Mission   domain.Mission          `json:"mission"`
}

// RecommendationRequest is the POST /recommendations payload.
type RecommendationRequest struct {
	CurrentHealth domain.HealthMetrics            `json:"current_health"`
	Mission       domain.Mission                  `json:"mission"`
	RiskFactors   map[domain.RiskCategory]float64 `json:"risk_factors"`
}

// MissionPlanRequest is the POST /mission-plan payload.
type MissionPlanRequest struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	DurationDays    int                     `json:"duration_days"`
}

// maxArchiveDay is the default upper bound for archive range queries
// when the caller does not narrow the range.
const maxArchiveDay = 1 << 20

// handleSimulate runs a mission simulation. Identical requests are
// served from the result cache when one is configured; a fresh run is
// persisted with a newly assigned ID.
func (s *Server) handleSimulate(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "Malformed request body", err.Error(), c.GetString("correlation_id")))
		return
	}

	// A request without a baseline falls back to the population
	// reference cohort when the HRDB client is configured.
	if s.hrdb != nil && req.Astronaut.BaselineHealth == (domain.HealthMetrics{}) {
		baseline, err := s.hrdb.GetReferenceBaseline(c.Request.Context(), req.Astronaut.Age, req.Astronaut.Gender)
		if err != nil {
			s.respondError(c, http.StatusBadGateway, domain.NewAPIError(
				domain.ErrCodeExternalAPI, "Failed to resolve reference baseline", err.Error(), c.GetString("correlation_id")))
			return
		}
		req.Astronaut.BaselineHealth = baseline.Baseline
	}

	key := cache.SimulationKey(req.Astronaut, req.Mission)
	if s.results != nil {
		if cached, ok := s.results.Get(c.Request.Context(), key); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	result, err := s.simulation.SimulateMission(c.Request.Context(), req.Astronaut, req.Mission)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	result.ID = uuid.New().String()

	record := &repository.SimulationRecord{
		ID:                 result.ID,
		AstronautID:        result.AstronautID,
		AstronautName:      req.Astronaut.Name,
		MissionType:        string(result.MissionType),
		DurationDays:       req.Mission.DurationDays,
		SimulationAccuracy: result.SimulationAccuracy,
		SuccessProbability: result.MissionSuccessProbability,
		RequestKey:         key,
		Result:             result,
	}
	if err := s.store.Save(c.Request.Context(), record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"simulation_id": result.ID,
			"error":         err,
		}).Error("Failed to persist simulation")
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to persist simulation", err.Error(), c.GetString("correlation_id")))
		return
	}

	// Archival is best effort; the response does not wait on it failing.
	if s.archive != nil {
		if err := s.archive.ArchivePredictions(c.Request.Context(), result.ID, result.Predictions); err != nil {
			s.logger.WithFields(logrus.Fields{
				"simulation_id": result.ID,
				"error":         err,
			}).Warn("Prediction archival failed")
		}
	}

	if s.results != nil {
		if err := s.results.Set(c.Request.Context(), key, result); err != nil {
			s.logger.WithFields(logrus.Fields{"error": err}).Warn("Result cache write failed")
		}
	}

	c.JSON(http.StatusOK, result)
}

// handleRecommendations scores and ranks countermeasures for the given
// health state and risk factors.
func (s *Server) handleRecommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "Malformed request body", err.Error(), c.GetString("correlation_id")))
		return
	}

	recs, err := s.recommendation.GenerateRecommendations(c.Request.Context(), req.CurrentHealth, req.Mission, req.RiskFactors)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleMissionPlan buckets already-scored recommendations into mission
// phases.
func (s *Server) handleMissionPlan(c *gin.Context) {
	var req MissionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "Malformed request body", err.Error(), c.GetString("correlation_id")))
		return
	}

	plan, err := s.recommendation.GenerateMissionPlan(c.Request.Context(), req.Recommendations, req.DurationDays)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mission_plan": plan,
		"total":        plan.Total(),
	})
}

// handleGetSimulation retrieves a persisted simulation by ID.
func (s *Server) handleGetSimulation(c *gin.Context) {
	id := c.Param("id")

	record, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.NewAPIError(
				domain.ErrCodeNotFound, "Simulation not found", id, c.GetString("correlation_id")))
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to load simulation", err.Error(), c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleListSimulations pages through persisted simulations, newest
// first.
func (s *Server) handleListSimulations(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to list simulations", err.Error(), c.GetString("correlation_id")))
		return
	}
	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to count simulations", err.Error(), c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"simulations": records,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// handleDeleteSimulation removes a persisted simulation. The cached
// result for the originating request is dropped alongside it so a repeat
// of the same request cannot serve a result whose ID no longer resolves.
func (s *Server) handleDeleteSimulation(c *gin.Context) {
	id := c.Param("id")

	if s.results != nil {
		if record, err := s.store.Get(c.Request.Context(), id); err == nil && record.RequestKey != "" {
			if err := s.results.Delete(c.Request.Context(), record.RequestKey); err != nil {
				s.logger.WithFields(logrus.Fields{
					"simulation_id": id,
					"error":         err,
				}).Warn("Result cache invalidation failed")
			}
		}
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.NewAPIError(
				domain.ErrCodeNotFound, "Simulation not found", id, c.GetString("correlation_id")))
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to delete simulation", err.Error(), c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted":   id,
		"timestamp": time.Now().UTC(),
	})
}

// handleMissionOutcomes returns historical outcome aggregates for a
// mission type, for contextualizing a predicted success probability
// against flown missions.
func (s *Server) handleMissionOutcomes(c *gin.Context) {
	if s.hrdb == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.NewAPIError(
			domain.ErrCodeUnavailable, "Historical outcome data is not configured", "", c.GetString("correlation_id")))
		return
	}

	missionType := domain.MissionType(c.Param("type"))
	if !missionType.IsValid() {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeValidation, "Unknown mission type", string(missionType), c.GetString("correlation_id")))
		return
	}

	outcome, err := s.hrdb.GetMissionOutcomes(c.Request.Context(), missionType)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, domain.NewAPIError(
			domain.ErrCodeExternalAPI, "Failed to fetch mission outcomes", err.Error(), c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// handleArchivedPredictions returns the archived per-tick rows of a
// simulation within an optional day range.
func (s *Server) handleArchivedPredictions(c *gin.Context) {
	id := c.Param("id")
	fromDay := parseIntQuery(c, "from", 0)
	toDay := parseIntQuery(c, "to", maxArchiveDay)
	if fromDay < 0 || toDay < fromDay {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeValidation, "Invalid day range", fmt.Sprintf("from=%d to=%d", fromDay, toDay), c.GetString("correlation_id")))
		return
	}

	if s.archive == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.NewAPIError(
			domain.ErrCodeUnavailable, "Prediction archive is not configured", "", c.GetString("correlation_id")))
		return
	}

	ticks, err := s.archive.ListRange(c.Request.Context(), id, fromDay, toDay)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeStorage, "Failed to load archived predictions", err.Error(), c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"simulation_id": id,
		"predictions":   ticks,
		"count":         len(ticks),
	})
}

// respondEngineError maps engine errors onto HTTP statuses. Validation
// failures are the caller's fault; configuration failures are ours.
func (s *Server) respondEngineError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.respondError(c, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeValidation, validationErr.Error(), validationErr.Field, c.GetString("correlation_id")))
		return
	}

	var configErr *domain.ConfigurationError
	if errors.As(err, &configErr) {
		s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeConfiguration, configErr.Error(), configErr.Setting, c.GetString("correlation_id")))
		return
	}

	s.respondError(c, http.StatusInternalServerError, domain.NewAPIError(
		domain.ErrCodeInternal, "Internal server error", err.Error(), c.GetString("correlation_id")))
}

func (s *Server) respondError(c *gin.Context, status int, apiErr *domain.APIError) {
	if status >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": apiErr.CorrelationID,
			"code":           apiErr.Code,
			"details":        apiErr.Details,
		}).Error(apiErr.Message)
	}
	c.JSON(status, gin.H{"error": apiErr})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
