package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyMetrics() HealthMetrics {
	return HealthMetrics{
		MuscleMassKg:          70.0,
		BoneDensityTScore:     0.5,
		CardiovascularFitness: 0.85,
		ImmuneFunction:        0.90,
		CognitivePerformance:  0.88,
		SleepQuality:          0.80,
		DNADamageLevel:        0.05,
		StressLevel:           0.20,
	}
}

func TestHealthMetricsClamped(t *testing.T) {
	m := HealthMetrics{
		MuscleMassKg:          -5,
		BoneDensityTScore:     -7.5,
		CardiovascularFitness: 1.4,
		ImmuneFunction:        -0.2,
		CognitivePerformance:  0.5,
		SleepQuality:          2.0,
		DNADamageLevel:        1.8,
		StressLevel:           -1.0,
	}

	c := m.Clamped()

	assert.Equal(t, 0.0, c.MuscleMassKg)
	assert.Equal(t, BoneDensityMin, c.BoneDensityTScore)
	assert.Equal(t, 1.0, c.CardiovascularFitness)
	assert.Equal(t, 0.0, c.ImmuneFunction)
	assert.Equal(t, 0.5, c.CognitivePerformance)
	assert.Equal(t, 1.0, c.SleepQuality)
	assert.Equal(t, 1.0, c.DNADamageLevel)
	assert.Equal(t, 0.0, c.StressLevel)
}

func TestOverallHealthScoreBounds(t *testing.T) {
	best := HealthMetrics{
		MuscleMassKg:          100,
		BoneDensityTScore:     BoneDensityMax,
		CardiovascularFitness: 1,
		ImmuneFunction:        1,
		CognitivePerformance:  1,
		SleepQuality:          1,
		DNADamageLevel:        0,
		StressLevel:           0,
	}
	worst := HealthMetrics{
		MuscleMassKg:      0,
		BoneDensityTScore: BoneDensityMin,
		DNADamageLevel:    1,
		StressLevel:       1,
	}

	assert.InDelta(t, 1.0, best.OverallHealthScore(), 1e-9)
	assert.InDelta(t, 0.0, worst.OverallHealthScore(), 1e-9)
	assert.Equal(t, StatusExcellent, best.Status())
	assert.Equal(t, StatusCritical, worst.Status())
}

func TestOverallHealthScoreInvertedIndicators(t *testing.T) {
	base := healthyMetrics()
	stressed := base
	stressed.StressLevel = 0.9
	damaged := base
	damaged.DNADamageLevel = 0.9

	assert.Less(t, stressed.OverallHealthScore(), base.OverallHealthScore())
	assert.Less(t, damaged.OverallHealthScore(), base.OverallHealthScore())
}

func TestHealthMetricsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HealthMetrics)
		field  string
	}{
		{"zero muscle mass", func(m *HealthMetrics) { m.MuscleMassKg = 0 }, "muscle_mass_kg"},
		{"bone density too low", func(m *HealthMetrics) { m.BoneDensityTScore = -4.5 }, "bone_density_t_score"},
		{"bone density too high", func(m *HealthMetrics) { m.BoneDensityTScore = 2.5 }, "bone_density_t_score"},
		{"cardio out of range", func(m *HealthMetrics) { m.CardiovascularFitness = 1.2 }, "cardiovascular_fitness"},
		{"negative stress", func(m *HealthMetrics) { m.StressLevel = -0.1 }, "stress_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyMetrics()
			tt.mutate(&m)

			err := m.Validate()

			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	assert.NoError(t, healthyMetrics().Validate())
}

func TestAstronautProfileValidate(t *testing.T) {
	valid := AstronautProfile{
		ID:             "a-1",
		Name:           "Test Astronaut",
		Age:            40,
		Gender:         "male",
		BaselineHealth: healthyMetrics(),
	}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	badAge := valid
	badAge.Age = 0
	assert.Error(t, badAge.Validate())

	badBaseline := valid
	badBaseline.BaselineHealth.MuscleMassKg = -1
	assert.Error(t, badBaseline.Validate())
}

func TestMissionStressMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		mission  Mission
		expected float64
	}{
		{"no stressors", Mission{Type: LowEarthOrbit, DurationDays: 30}, 1.0},
		{"full microgravity", Mission{Type: Lunar, DurationDays: 30, MicrogravityLevel: 1.0}, 2.0},
		{"radiation only", Mission{Type: DeepSpace, DurationDays: 30, RadiationExposure: 2.0}, 1.2},
		{"mars transit profile", Mission{Type: MarsTransit, DurationDays: 210, MicrogravityLevel: 1.0, RadiationExposure: 0.5}, 2.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.mission.StressMultiplier(), 1e-9)
		})
	}
}

func TestMissionValidate(t *testing.T) {
	valid := Mission{Type: MarsTransit, DurationDays: 210, MicrogravityLevel: 1.0, RadiationExposure: 0.5}
	assert.NoError(t, valid.Validate())

	badType := valid
	badType.Type = "SUBORBITAL"
	assert.Error(t, badType.Validate())

	badDuration := valid
	badDuration.DurationDays = 0
	assert.Error(t, badDuration.Validate())

	badGravity := valid
	badGravity.MicrogravityLevel = 1.5
	assert.Error(t, badGravity.Validate())

	badRadiation := valid
	badRadiation.RadiationExposure = -0.1
	assert.Error(t, badRadiation.Validate())
}

func TestSimulationResultFinalPrediction(t *testing.T) {
	empty := &SimulationResult{}
	assert.Nil(t, empty.FinalPrediction())

	result := &SimulationResult{
		Predictions: []Prediction{
			{DayOffset: 0},
			{DayOffset: 7},
			{DayOffset: 10},
		},
	}
	final := result.FinalPrediction()
	require.NotNil(t, final)
	assert.Equal(t, 10, final.DayOffset)
}

func TestRecommendationValidate(t *testing.T) {
	valid := Recommendation{
		Title:           "Resistance Exercise Protocol",
		Category:        RiskMuscleAtrophy,
		Priority:        PriorityHigh,
		ExpectedBenefit: 0.7,
		Cost:            0.3,
		Feasibility:     0.9,
		Timeline:        0.1,
	}
	assert.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = ""
	assert.Error(t, noTitle.Validate())

	badCategory := valid
	badCategory.Category = "unknown"
	assert.Error(t, badCategory.Validate())

	badPriority := valid
	badPriority.Priority = 7
	assert.Error(t, badPriority.Validate())

	badBenefit := valid
	badBenefit.ExpectedBenefit = 1.3
	assert.Error(t, badBenefit.Validate())
}

func TestMissionPlanTotal(t *testing.T) {
	plan := MissionPlan{
		PhaseEarly: {{Title: "A"}, {Title: "B"}},
		PhaseMid:   {},
		PhaseLate:  {{Title: "C"}},
	}
	assert.Equal(t, 3, plan.Total())
	assert.Equal(t, 0, MissionPlan{}.Total())
}
