// Package domain contains the core entities for astronaut health
// prediction: physiological metrics, mission descriptors, simulation
// output, and countermeasure recommendations.
//
// All numeric indicators are normalized and bounded; the simulation and
// recommendation engines operate on these types only and never pull in
// transport or storage concerns.
package domain

import "errors"

// HealthStatus is the qualitative banding of an overall health score.
type HealthStatus string

const (
	StatusExcellent HealthStatus = "EXCELLENT"
	StatusGood      HealthStatus = "GOOD"
	StatusFair      HealthStatus = "FAIR"
	StatusPoor      HealthStatus = "POOR"
	StatusCritical  HealthStatus = "CRITICAL"
)

// statusThresholds maps overall health score to status. Ordered highest
// first; the first entry whose floor the score meets wins.
var statusThresholds = []struct {
	Floor  float64
	Status HealthStatus
}{
	{0.90, StatusExcellent},
	{0.75, StatusGood},
	{0.60, StatusFair},
	{0.40, StatusPoor},
	{0.00, StatusCritical},
}

// StatusForScore derives the health status band for a score in [0,1].
func StatusForScore(score float64) HealthStatus {
	for _, t := range statusThresholds {
		if score >= t.Floor {
			return t.Status
		}
	}
	return StatusCritical
}

// MissionType identifies the mission profile class.
type MissionType string

const (
	LowEarthOrbit MissionType = "LOW_EARTH_ORBIT"
	Lunar         MissionType = "LUNAR"
	MarsTransit   MissionType = "MARS_TRANSIT"
	DeepSpace     MissionType = "DEEP_SPACE"
)

// RiskCategory names a tracked physiological risk. Each of the eight
// indicators maps to exactly one category.
type RiskCategory string

const (
	RiskMuscleAtrophy         RiskCategory = "muscle_atrophy"
	RiskBoneLoss              RiskCategory = "bone_loss"
	RiskCardiovascularDecline RiskCategory = "cardiovascular_decline"
	RiskImmuneSuppression     RiskCategory = "immune_suppression"
	RiskCognitiveDecline      RiskCategory = "cognitive_decline"
	RiskSleepDisruption       RiskCategory = "sleep_disruption"
	RiskRadiationDamage       RiskCategory = "radiation_damage"
	RiskPsychologicalStress   RiskCategory = "psychological_stress"
)

// RiskCategories lists all categories in canonical indicator order.
var RiskCategories = []RiskCategory{
	RiskMuscleAtrophy,
	RiskBoneLoss,
	RiskCardiovascularDecline,
	RiskImmuneSuppression,
	RiskCognitiveDecline,
	RiskSleepDisruption,
	RiskRadiationDamage,
	RiskPsychologicalStress,
}

// Priority orders recommendations from most to least urgent.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
	PriorityOptional Priority = 5
)

// Validation errors for enum fields.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidMissionType = errors.New("invalid mission type")
	ErrInvalidPriority    = errors.New("invalid recommendation priority")
	ErrInvalidStatus      = errors.New("invalid health status")
)

// IsValid reports whether the status is one of the five defined bands.
func (s HealthStatus) IsValid() bool {
	switch s {
	case StatusExcellent, StatusGood, StatusFair, StatusPoor, StatusCritical:
		return true
	default:
		return false
	}
}

func (s HealthStatus) String() string {
	return string(s)
}

// IsValid reports whether the mission type is a known profile class.
func (mt MissionType) IsValid() bool {
	switch mt {
	case LowEarthOrbit, Lunar, MarsTransit, DeepSpace:
		return true
	default:
		return false
	}
}

func (mt MissionType) String() string {
	return string(mt)
}

// LogFields returns structured logging fields for mission audit entries.
func (mt MissionType) LogFields() map[string]any {
	return map[string]any{
		"mission_type": string(mt),
		"is_valid":     mt.IsValid(),
	}
}

// IsValid reports whether the category is one of the eight tracked risks.
func (rc RiskCategory) IsValid() bool {
	for _, c := range RiskCategories {
		if rc == c {
			return true
		}
	}
	return false
}

func (rc RiskCategory) String() string {
	return string(rc)
}

// IsValid reports whether the priority is in the defined 1..5 range.
func (p Priority) IsValid() bool {
	return p >= PriorityCritical && p <= PriorityOptional
}

// String returns the priority name used in reports and logs.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	case PriorityOptional:
		return "OPTIONAL"
	default:
		return "UNKNOWN"
	}
}
