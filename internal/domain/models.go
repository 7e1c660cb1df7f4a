package domain

import "math"

// Bounds for the non-unit-interval indicators. T-scores below -4 or above
// +2 are outside the clinically meaningful range for this model.
const (
	BoneDensityMin = -4.0
	BoneDensityMax = 2.0
)

// Weights for the overall health score. The eight normalized indicators
// are blended into a single [0,1] aggregate; weights sum to 1.0.
const (
	weightMuscle    = 0.15
	weightBone      = 0.15
	weightCardio    = 0.15
	weightImmune    = 0.125
	weightCognitive = 0.125
	weightSleep     = 0.10
	weightDNA       = 0.10
	weightStress    = 0.10
)

// referenceMuscleMassKg anchors muscle mass normalization for the overall
// score; masses at or above it count as fully fit.
const referenceMuscleMassKg = 80.0

// HealthMetrics is a snapshot of the eight tracked physiological
// indicators. MuscleMassKg is in kilograms (> 0), BoneDensityTScore is a
// DXA T-score, and the remaining six are normalized to [0,1].
// DNADamageLevel and StressLevel are inverted indicators: higher is worse.
type HealthMetrics struct {
	MuscleMassKg          float64 `json:"muscle_mass_kg"`
	BoneDensityTScore     float64 `json:"bone_density_t_score"`
	CardiovascularFitness float64 `json:"cardiovascular_fitness"`
	ImmuneFunction        float64 `json:"immune_function"`
	CognitivePerformance  float64 `json:"cognitive_performance"`
	SleepQuality          float64 `json:"sleep_quality"`
	DNADamageLevel        float64 `json:"dna_damage_level"`
	StressLevel           float64 `json:"stress_level"`
}

// Clamped returns a copy with every field forced into its declared range.
// The simulation applies this after every transformation so no projection
// can escape the model's domain.
func (h HealthMetrics) Clamped() HealthMetrics {
	return HealthMetrics{
		MuscleMassKg:          math.Max(h.MuscleMassKg, 0),
		BoneDensityTScore:     clamp(h.BoneDensityTScore, BoneDensityMin, BoneDensityMax),
		CardiovascularFitness: clamp(h.CardiovascularFitness, 0, 1),
		ImmuneFunction:        clamp(h.ImmuneFunction, 0, 1),
		CognitivePerformance:  clamp(h.CognitivePerformance, 0, 1),
		SleepQuality:          clamp(h.SleepQuality, 0, 1),
		DNADamageLevel:        clamp(h.DNADamageLevel, 0, 1),
		StressLevel:           clamp(h.StressLevel, 0, 1),
	}
}

// OverallHealthScore blends the normalized indicators into a single
// aggregate in [0,1]. Inverted indicators contribute their complement.
func (h HealthMetrics) OverallHealthScore() float64 {
	c := h.Clamped()

	muscleNorm := clamp(c.MuscleMassKg/referenceMuscleMassKg, 0, 1)
	boneNorm := (c.BoneDensityTScore - BoneDensityMin) / (BoneDensityMax - BoneDensityMin)

	score := weightMuscle*muscleNorm +
		weightBone*boneNorm +
		weightCardio*c.CardiovascularFitness +
		weightImmune*c.ImmuneFunction +
		weightCognitive*c.CognitivePerformance +
		weightSleep*c.SleepQuality +
		weightDNA*(1-c.DNADamageLevel) +
		weightStress*(1-c.StressLevel)

	return clamp(score, 0, 1)
}

// Status derives the qualitative health band from the overall score.
func (h HealthMetrics) Status() HealthStatus {
	return StatusForScore(h.OverallHealthScore())
}

// Validate checks every indicator against its declared range. The first
// out-of-range field is reported by name.
func (h HealthMetrics) Validate() error {
	if h.MuscleMassKg <= 0 {
		return NewValidationError("muscle_mass_kg", "must be positive", h.MuscleMassKg)
	}
	if h.BoneDensityTScore < BoneDensityMin || h.BoneDensityTScore > BoneDensityMax {
		return NewValidationError("bone_density_t_score", "must be within [-4, 2]", h.BoneDensityTScore)
	}
	unit := []struct {
		field string
		value float64
	}{
		{"cardiovascular_fitness", h.CardiovascularFitness},
		{"immune_function", h.ImmuneFunction},
		{"cognitive_performance", h.CognitivePerformance},
		{"sleep_quality", h.SleepQuality},
		{"dna_damage_level", h.DNADamageLevel},
		{"stress_level", h.StressLevel},
	}
	for _, f := range unit {
		if f.value < 0 || f.value > 1 {
			return NewValidationError(f.field, "must be within [0, 1]", f.value)
		}
	}
	return nil
}

// AstronautProfile describes the crew member being simulated. The baseline
// health snapshot is immutable once the profile is constructed; the
// engines copy it and never write back.
type AstronautProfile struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Age            int           `json:"age"`
	Gender         string        `json:"gender"`
	MissionHistory []string      `json:"mission_history"`
	BaselineHealth HealthMetrics `json:"baseline_health"`
}

// Validate ensures the profile is usable as simulation input.
func (a AstronautProfile) Validate() error {
	if a.Name == "" {
		return NewValidationError("name", "is required", a.Name)
	}
	if a.Age <= 0 {
		return NewValidationError("age", "must be positive", a.Age)
	}
	return a.BaselineHealth.Validate()
}

// Mission describes the stressor profile the astronaut is exposed to.
type Mission struct {
	Type              MissionType `json:"mission_type"`
	DurationDays      int         `json:"duration_days"`
	MicrogravityLevel float64     `json:"microgravity_level"`
	RadiationExposure float64     `json:"radiation_exposure"` // mSv/day
}

// StressMultiplier combines the mission stressors into the decay
// amplification factor. A zero-stressor control mission yields exactly 1;
// the multiplier grows monotonically with both stressors.
func (m Mission) StressMultiplier() float64 {
	return 1 + m.MicrogravityLevel + m.RadiationExposure/10
}

// Validate ensures the mission parameters are in range.
func (m Mission) Validate() error {
	if !m.Type.IsValid() {
		return NewValidationError("mission_type", "must be one of LOW_EARTH_ORBIT, LUNAR, MARS_TRANSIT, DEEP_SPACE", string(m.Type))
	}
	if m.DurationDays <= 0 {
		return NewValidationError("duration_days", "must be positive", m.DurationDays)
	}
	if m.MicrogravityLevel < 0 || m.MicrogravityLevel > 1 {
		return NewValidationError("microgravity_level", "must be within [0, 1]", m.MicrogravityLevel)
	}
	if m.RadiationExposure < 0 {
		return NewValidationError("radiation_exposure", "must be non-negative", m.RadiationExposure)
	}
	return nil
}

// Prediction is one simulated time point. Immutable once appended to a
// result.
type Prediction struct {
	DayOffset     int                      `json:"day_offset"`
	HealthMetrics HealthMetrics            `json:"health_metrics"`
	RiskFactors   map[RiskCategory]float64 `json:"risk_factors"`
}

// SimulationResult is the full projection for one astronaut/mission pair.
// Predictions are insertion-ordered: first entry is the day-0 baseline,
// last entry is the exact mission end. MissionSuccessProbability is
// derived at simulation time from the final health state and the
// high-risk exposure; the result carries no clock or random state.
type SimulationResult struct {
	ID                         string                   `json:"id"`
	AstronautID                string                   `json:"astronaut_id"`
	MissionType                MissionType              `json:"mission_type"`
	Predictions                []Prediction             `json:"predictions"`
	RiskAssessment             map[RiskCategory]float64 `json:"risk_assessment"`
	SimulationAccuracy         float64                  `json:"simulation_accuracy"`
	RecommendedCountermeasures []string                 `json:"recommended_countermeasures"`
	MissionSuccessProbability  float64                  `json:"mission_success_probability"`
}

// FinalPrediction returns the mission-end prediction, or nil for an empty
// result.
func (r *SimulationResult) FinalPrediction() *Prediction {
	if len(r.Predictions) == 0 {
		return nil
	}
	return &r.Predictions[len(r.Predictions)-1]
}

// Recommendation is a scored candidate intervention for one risk
// category. Cost, Feasibility and Timeline are normalized to [0,1] and
// feed the scoring function; Score is the resulting rank key.
type Recommendation struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        RiskCategory `json:"category"`
	Priority        Priority     `json:"priority"`
	ExpectedBenefit float64      `json:"expected_benefit"`
	Cost            float64      `json:"cost"`
	Feasibility     float64      `json:"feasibility"`
	Timeline        float64      `json:"timeline"`
	Score           float64      `json:"score"`
}

// Validate ensures the recommendation fields are in range.
func (r Recommendation) Validate() error {
	if r.Title == "" {
		return NewValidationError("title", "is required", r.Title)
	}
	if !r.Category.IsValid() {
		return NewValidationError("category", "must be a known risk category", string(r.Category))
	}
	if !r.Priority.IsValid() {
		return NewValidationError("priority", "must be within 1..5", int(r.Priority))
	}
	unit := []struct {
		field string
		value float64
	}{
		{"expected_benefit", r.ExpectedBenefit},
		{"cost", r.Cost},
		{"feasibility", r.Feasibility},
		{"timeline", r.Timeline},
	}
	for _, f := range unit {
		if f.value < 0 || f.value > 1 {
			return NewValidationError(f.field, "must be within [0, 1]", f.value)
		}
	}
	return nil
}

// Mission plan phase labels, in chronological order.
const (
	PhaseEarly = "Early"
	PhaseMid   = "Mid"
	PhaseLate  = "Late"
)

// PhaseLabels lists the plan phases in chronological order.
var PhaseLabels = []string{PhaseEarly, PhaseMid, PhaseLate}

// MissionPlan maps phase label to the recommendations scheduled for that
// phase, in descending score order within each phase. Every phase key is
// always present, possibly with an empty slice.
type MissionPlan map[string][]Recommendation

// Total counts the recommendations across all phases.
func (p MissionPlan) Total() int {
	n := 0
	for _, recs := range p {
		n += len(recs)
	}
	return n
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
