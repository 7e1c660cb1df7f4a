// Package service implements the health simulation and countermeasure
// recommendation engines. Both are pure functions of their inputs and a
// read-only configuration snapshot: no shared mutable state, no clock, no
// randomness. Independent calls are safe to run in parallel.
package service

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/domain"
)

// indicatorMode selects the projection formula for an indicator.
type indicatorMode int

const (
	// modeDecay projects value(t) = baseline * exp(-rate * stress * t).
	modeDecay indicatorMode = iota
	// modeAccumulate projects value(t) = min(1, baseline + rate * stress * t).
	modeAccumulate
)

// indicator binds one physiological measure to its risk category,
// projection mode, per-day rate, and accessors on HealthMetrics.
type indicator struct {
	category domain.RiskCategory
	mode     indicatorMode
	rate     float64
	value    func(domain.HealthMetrics) float64
	assign   func(*domain.HealthMetrics, float64)
	severity func(baseline, current float64) float64
}

// SimulationEngine projects an astronaut's health state across a mission
// timeline. Construct once per configuration snapshot; the engine holds
// no per-call state and is safe for concurrent use.
type SimulationEngine struct {
	logger     *logrus.Logger
	cfg        domain.SimulationConfig
	thresholds domain.RiskThresholds
	indicators []indicator
}

// NewSimulationEngine creates a simulation engine over a configuration
// snapshot. The thresholds drive countermeasure and success-probability
// derivation only; scoring of individual interventions belongs to the
// recommendation engine.
func NewSimulationEngine(logger *logrus.Logger, cfg domain.SimulationConfig, thresholds domain.RiskThresholds) *SimulationEngine {
	e := &SimulationEngine{
		logger:     logger,
		cfg:        cfg,
		thresholds: thresholds,
	}
	e.initializeIndicators()
	return e
}

// initializeIndicators builds the projection table for the eight tracked
// indicators.
func (e *SimulationEngine) initializeIndicators() {
	e.indicators = []indicator{
		{
			category: domain.RiskMuscleAtrophy,
			mode:     modeDecay,
			rate:     e.cfg.MuscleAtrophyRate,
			value:    func(h domain.HealthMetrics) float64 { return h.MuscleMassKg },
			assign:   func(h *domain.HealthMetrics, v float64) { h.MuscleMassKg = v },
			severity: relativeLoss,
		},
		{
			category: domain.RiskBoneLoss,
			mode:     modeDecay,
			rate:     e.cfg.BoneLossRate,
			value: func(h domain.HealthMetrics) float64 {
				// Decay operates on the offset from the T-score floor so
				// the exponential stays positive across the whole range.
				return h.BoneDensityTScore - domain.BoneDensityMin
			},
			assign: func(h *domain.HealthMetrics, v float64) {
				h.BoneDensityTScore = v + domain.BoneDensityMin
			},
			severity: relativeLoss,
		},
		{
			category: domain.RiskCardiovascularDecline,
			mode:     modeDecay,
			rate:     e.cfg.CardiovascularDeclineRate,
			value:    func(h domain.HealthMetrics) float64 { return h.CardiovascularFitness },
			assign:   func(h *domain.HealthMetrics, v float64) { h.CardiovascularFitness = v },
			severity: relativeLoss,
		},
		{
			category: domain.RiskImmuneSuppression,
			mode:     modeDecay,
			rate:     e.cfg.ImmuneDeclineRate,
			value:    func(h domain.HealthMetrics) float64 { return h.ImmuneFunction },
			assign:   func(h *domain.HealthMetrics, v float64) { h.ImmuneFunction = v },
			severity: relativeLoss,
		},
		{
			category: domain.RiskCognitiveDecline,
			mode:     modeDecay,
			rate:     e.cfg.CognitiveDeclineRate,
			value:    func(h domain.HealthMetrics) float64 { return h.CognitivePerformance },
			assign:   func(h *domain.HealthMetrics, v float64) { h.CognitivePerformance = v },
			severity: relativeLoss,
		},
		{
			category: domain.RiskSleepDisruption,
			mode:     modeDecay,
			rate:     e.cfg.SleepDeclineRate,
			value:    func(h domain.HealthMetrics) float64 { return h.SleepQuality },
			assign:   func(h *domain.HealthMetrics, v float64) { h.SleepQuality = v },
			severity: relativeLoss,
		},
		{
			category: domain.RiskRadiationDamage,
			mode:     modeAccumulate,
			rate:     e.cfg.DNADamageRate,
			value:    func(h domain.HealthMetrics) float64 { return h.DNADamageLevel },
			assign:   func(h *domain.HealthMetrics, v float64) { h.DNADamageLevel = v },
			severity: headroomConsumed,
		},
		{
			category: domain.RiskPsychologicalStress,
			mode:     modeAccumulate,
			rate:     e.cfg.StressAccumulationRate,
			value:    func(h domain.HealthMetrics) float64 { return h.StressLevel },
			assign:   func(h *domain.HealthMetrics, v float64) { h.StressLevel = v },
			severity: headroomConsumed,
		},
	}
}

// SimulateMission projects the astronaut's baseline health across the
// mission timeline and derives the risk assessment, confidence figure,
// and mission-level countermeasures. It validates all inputs up front
// and never returns a partially populated result.
//
// The context is accepted for interface symmetry with the engine's
// collaborators; the projection itself has no suspension points.
func (e *SimulationEngine) SimulateMission(ctx context.Context, astronaut domain.AstronautProfile, mission domain.Mission) (*domain.SimulationResult, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	if err := astronaut.Validate(); err != nil {
		return nil, err
	}
	if err := mission.Validate(); err != nil {
		return nil, err
	}
	if mission.DurationDays > e.cfg.MaxSimulationDays {
		return nil, domain.NewValidationError("duration_days", "exceeds max_simulation_days", mission.DurationDays)
	}

	stress := mission.StressMultiplier()
	baseline := astronaut.BaselineHealth.Clamped()

	e.logger.WithFields(logrus.Fields{
		"astronaut_id":      astronaut.ID,
		"mission_type":      mission.Type.String(),
		"duration_days":     mission.DurationDays,
		"stress_multiplier": stress,
	}).Info("Starting mission health simulation")

	ticks := tickOffsets(mission.DurationDays, e.cfg.PredictionIntervalDays)

	predictions := make([]domain.Prediction, 0, len(ticks))
	observed := make(map[domain.RiskCategory][]float64, len(e.indicators))
	for _, t := range ticks {
		metrics, risks := e.project(baseline, stress, t)
		for cat, sev := range risks {
			observed[cat] = append(observed[cat], sev)
		}
		predictions = append(predictions, domain.Prediction{
			DayOffset:     t,
			HealthMetrics: metrics,
			RiskFactors:   risks,
		})
	}

	assessment := make(map[domain.RiskCategory]float64, len(observed))
	for cat, severities := range observed {
		worst, err := stats.Max(severities)
		if err != nil {
			return nil, domain.NewValidationError("risk_factors", "no severities observed", cat)
		}
		assessment[cat] = worst
	}

	result := &domain.SimulationResult{
		AstronautID:                astronaut.ID,
		MissionType:                mission.Type,
		Predictions:                predictions,
		RiskAssessment:             assessment,
		SimulationAccuracy:         e.accuracy(mission.DurationDays, stress),
		RecommendedCountermeasures: e.countermeasures(assessment),
	}
	result.MissionSuccessProbability = e.successProbability(result)

	e.logger.WithFields(logrus.Fields{
		"astronaut_id":        astronaut.ID,
		"predictions":         len(result.Predictions),
		"simulation_accuracy": result.SimulationAccuracy,
		"success_probability": result.MissionSuccessProbability,
		"countermeasures":     len(result.RecommendedCountermeasures),
	}).Info("Mission health simulation completed")

	return result, nil
}

// project computes the health snapshot and per-indicator risk severities
// for one tick.
func (e *SimulationEngine) project(baseline domain.HealthMetrics, stress float64, day int) (domain.HealthMetrics, map[domain.RiskCategory]float64) {
	metrics := baseline
	risks := make(map[domain.RiskCategory]float64, len(e.indicators))

	t := float64(day)
	for _, ind := range e.indicators {
		b := ind.value(baseline)
		var v float64
		switch ind.mode {
		case modeDecay:
			v = b * math.Exp(-ind.rate*stress*t)
		case modeAccumulate:
			v = math.Min(1, b+ind.rate*stress*t)
		}
		ind.assign(&metrics, v)
	}
	metrics = metrics.Clamped()

	for _, ind := range e.indicators {
		risks[ind.category] = ind.severity(ind.value(baseline), ind.value(metrics))
	}
	return metrics, risks
}

// accuracy is the self-reported reliability figure: it starts at the
// configured default and degrades with mission length and stressor
// magnitude, floored at the confidence threshold. It is not a statistical
// fit metric.
func (e *SimulationEngine) accuracy(durationDays int, stress float64) float64 {
	lengthPenalty := 0.05 * float64(durationDays) / float64(e.cfg.MaxSimulationDays)
	stressPenalty := 0.02 * (stress - 1)
	raw := e.cfg.DefaultAccuracyThreshold - lengthPenalty - stressPenalty
	return clamp(raw, e.cfg.ConfidenceThreshold, 1)
}

// countermeasureText holds the mission-level advisory per risk category.
var countermeasureText = map[domain.RiskCategory]string{
	domain.RiskMuscleAtrophy:         "Implement daily resistance exercise protocol to counteract muscle atrophy",
	domain.RiskBoneLoss:              "Schedule load-bearing countermeasures and monitor bone density weekly",
	domain.RiskCardiovascularDecline: "Increase aerobic conditioning sessions to preserve cardiovascular fitness",
	domain.RiskImmuneSuppression:     "Intensify immune monitoring and adjust nutritional supplementation",
	domain.RiskCognitiveDecline:      "Reduce cognitive workload and enforce structured rest periods",
	domain.RiskSleepDisruption:       "Apply sleep hygiene protocol and review circadian lighting schedule",
	domain.RiskRadiationDamage:       "Adjust shielding configuration and limit EVA exposure windows",
	domain.RiskPsychologicalStress:   "Schedule psychological support sessions and family communication time",
}

// countermeasures lists an advisory for every category whose worst-case
// severity exceeds the high-risk threshold, in canonical indicator order.
func (e *SimulationEngine) countermeasures(assessment map[domain.RiskCategory]float64) []string {
	out := make([]string, 0)
	for _, cat := range domain.RiskCategories {
		if assessment[cat] > e.thresholds.High {
			out = append(out, countermeasureText[cat])
		}
	}
	return out
}

// successProbability blends the mission-end health score with the
// worst-case high-risk exposure. It decreases as the final score degrades
// and as high-risk categories accumulate, and stays within [0,1].
func (e *SimulationEngine) successProbability(result *domain.SimulationResult) float64 {
	final := result.FinalPrediction()
	if final == nil {
		return 0
	}
	score := final.HealthMetrics.OverallHealthScore()

	highSeverities := make([]float64, 0, len(result.RiskAssessment))
	for _, cat := range domain.RiskCategories {
		if sev, ok := result.RiskAssessment[cat]; ok && sev > e.thresholds.High {
			highSeverities = append(highSeverities, sev)
		}
	}

	meanHigh := 0.0
	if len(highSeverities) > 0 {
		m, err := stats.Mean(highSeverities)
		if err == nil {
			meanHigh = m
		}
	}

	p := 0.5*score + 0.5*(1-meanHigh) - 0.05*float64(len(highSeverities))
	return clamp(p, 0, 1)
}

// tickOffsets enumerates the prediction days: 0, interval, 2*interval,
// ..., plus a forced final tick at exactly durationDays when the last
// interval tick does not already land there.
func tickOffsets(durationDays, intervalDays int) []int {
	ticks := make([]int, 0, durationDays/intervalDays+2)
	for t := 0; t <= durationDays; t += intervalDays {
		ticks = append(ticks, t)
	}
	if ticks[len(ticks)-1] != durationDays {
		ticks = append(ticks, durationDays)
	}
	return ticks
}

// relativeLoss is the severity for degrading indicators: the fraction of
// the baseline lost, clamped to [0,1]. A zero baseline has nothing to
// lose and scores zero.
func relativeLoss(baseline, current float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return clamp((baseline-current)/baseline, 0, 1)
}

// headroomConsumed is the severity for accumulating indicators: the
// fraction of remaining headroom to the 1.0 ceiling consumed by the
// drift, clamped to [0,1].
func headroomConsumed(baseline, current float64) float64 {
	headroom := 1 - baseline
	if headroom <= 0 {
		return 0
	}
	return clamp((current-baseline)/headroom, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
