package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahse-server/internal/domain"
)

func newTestRecommendationEngine() *RecommendationEngine {
	return NewRecommendationEngine(testLogger(), domain.DefaultRecommendationConfig())
}

func TestGenerateRecommendationsEmptyRiskMap(t *testing.T) {
	engine := newTestRecommendationEngine()

	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), map[domain.RiskCategory]float64{})

	require.NoError(t, err)
	assert.Empty(t, recs, "no risks means no recommendations, not an error")
}

func TestGenerateRecommendationsSkipsLowSeverity(t *testing.T) {
	engine := newTestRecommendationEngine()

	risks := map[domain.RiskCategory]float64{
		domain.RiskMuscleAtrophy:   0.05, // at or below low threshold
		domain.RiskBoneLoss:        0.10, // exactly the low threshold
		domain.RiskSleepDisruption: 0.50,
	}

	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), risks)

	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Equal(t, domain.RiskSleepDisruption, rec.Category,
			"only the category above the low threshold may produce candidates")
	}
}

func TestGenerateRecommendationsScoreOrder(t *testing.T) {
	engine := newTestRecommendationEngine()

	risks := map[domain.RiskCategory]float64{
		domain.RiskMuscleAtrophy:         0.8,
		domain.RiskBoneLoss:              0.6,
		domain.RiskCardiovascularDecline: 0.5,
		domain.RiskRadiationDamage:       0.75,
		domain.RiskPsychologicalStress:   0.3,
	}

	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), risks)

	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score,
			"recommendations must be sorted by descending score")
	}
	for _, rec := range recs {
		assert.NoError(t, rec.Validate())
	}
}

func TestGenerateRecommendationsScoreFormula(t *testing.T) {
	cfg := domain.DefaultRecommendationConfig()
	engine := NewRecommendationEngine(testLogger(), cfg)

	severity := 0.5
	risks := map[domain.RiskCategory]float64{domain.RiskBoneLoss: severity}

	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), risks)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]

	tpl := interventionTemplates[domain.RiskBoneLoss][0]
	stress := marsMission().StressMultiplier()
	expectedBenefit := tpl.baseBenefit + tpl.benefitSpan*severity
	expectedFeasibility := tpl.feasibility - 0.05*(stress-1)
	expectedScore := cfg.BenefitWeight*expectedBenefit +
		cfg.FeasibilityWeight*expectedFeasibility -
		cfg.CostWeight*tpl.cost -
		cfg.TimelineWeight*tpl.timeline

	assert.InDelta(t, expectedBenefit, rec.ExpectedBenefit, 1e-12)
	assert.InDelta(t, expectedFeasibility, rec.Feasibility, 1e-12)
	assert.InDelta(t, expectedScore, rec.Score, 1e-12)
}

func TestGenerateRecommendationsTruncation(t *testing.T) {
	cfg := domain.DefaultRecommendationConfig()
	cfg.MaxRecommendations = 3
	engine := NewRecommendationEngine(testLogger(), cfg)

	// Every category at high severity yields more candidates than the cap.
	risks := make(map[domain.RiskCategory]float64, len(domain.RiskCategories))
	for _, cat := range domain.RiskCategories {
		risks[cat] = 0.9
	}

	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), risks)

	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestGenerateRecommendationsPriorityBuckets(t *testing.T) {
	engine := newTestRecommendationEngine()

	tests := []struct {
		name     string
		severity float64
		expected domain.Priority
	}{
		{"high severity is critical", 0.85, domain.PriorityCritical},
		{"at high threshold", 0.70, domain.PriorityCritical},
		{"medium severity", 0.50, domain.PriorityHigh},
		{"at medium threshold", 0.40, domain.PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risks := map[domain.RiskCategory]float64{domain.RiskBoneLoss: tt.severity}

			recs, err := engine.GenerateRecommendations(context.Background(),
				testAstronaut().BaselineHealth, marsMission(), risks)

			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.expected, recs[0].Priority)
		})
	}
}

func TestGenerateRecommendationsValidation(t *testing.T) {
	engine := newTestRecommendationEngine()
	ctx := context.Background()
	health := testAstronaut().BaselineHealth

	t.Run("unknown category", func(t *testing.T) {
		_, err := engine.GenerateRecommendations(ctx, health, marsMission(),
			map[domain.RiskCategory]float64{"vision_impairment": 0.5})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "risk_factors", vErr.Field)
	})

	t.Run("severity out of range", func(t *testing.T) {
		_, err := engine.GenerateRecommendations(ctx, health, marsMission(),
			map[domain.RiskCategory]float64{domain.RiskBoneLoss: 1.2})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("invalid health snapshot", func(t *testing.T) {
		bad := health
		bad.MuscleMassKg = -1
		_, err := engine.GenerateRecommendations(ctx, bad, marsMission(),
			map[domain.RiskCategory]float64{domain.RiskBoneLoss: 0.5})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "muscle_mass_kg", vErr.Field)
	})

	t.Run("invalid mission", func(t *testing.T) {
		_, err := engine.GenerateRecommendations(ctx, health,
			domain.Mission{Type: "SUBORBITAL", DurationDays: 10},
			map[domain.RiskCategory]float64{domain.RiskBoneLoss: 0.5})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("bad configuration", func(t *testing.T) {
		cfg := domain.DefaultRecommendationConfig()
		cfg.CostWeight = -0.5
		broken := NewRecommendationEngine(testLogger(), cfg)

		_, err := broken.GenerateRecommendations(ctx, health, marsMission(),
			map[domain.RiskCategory]float64{domain.RiskBoneLoss: 0.5})

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestGenerateMissionPlanPhases(t *testing.T) {
	engine := newTestRecommendationEngine()

	risks := make(map[domain.RiskCategory]float64, len(domain.RiskCategories))
	for _, cat := range domain.RiskCategories {
		risks[cat] = 0.9
	}
	recs, err := engine.GenerateRecommendations(context.Background(),
		testAstronaut().BaselineHealth, marsMission(), risks)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	plan, err := engine.GenerateMissionPlan(context.Background(), recs, 210)
	require.NoError(t, err)

	// All three phase keys exist even when empty.
	for _, phase := range domain.PhaseLabels {
		_, ok := plan[phase]
		assert.True(t, ok, "phase %s must be present", phase)
	}

	// Every recommendation lands in exactly one phase.
	assert.Equal(t, len(recs), plan.Total())

	// Phase assignment follows the timeline thirds.
	for phase, phaseRecs := range plan {
		for _, rec := range phaseRecs {
			switch phase {
			case domain.PhaseEarly:
				assert.Less(t, rec.Timeline, 1.0/3.0)
			case domain.PhaseMid:
				assert.GreaterOrEqual(t, rec.Timeline, 1.0/3.0)
				assert.Less(t, rec.Timeline, 2.0/3.0)
			case domain.PhaseLate:
				assert.GreaterOrEqual(t, rec.Timeline, 2.0/3.0)
			}
		}
	}

	// Score order is preserved within each phase.
	for _, phaseRecs := range plan {
		for i := 1; i < len(phaseRecs); i++ {
			assert.GreaterOrEqual(t, phaseRecs[i-1].Score, phaseRecs[i].Score)
		}
	}
}

func TestGenerateMissionPlanEmptyInput(t *testing.T) {
	engine := newTestRecommendationEngine()

	plan, err := engine.GenerateMissionPlan(context.Background(), nil, 100)

	require.NoError(t, err)
	assert.Len(t, plan, 3)
	assert.Equal(t, 0, plan.Total())
}

func TestGenerateMissionPlanRejectsBadDuration(t *testing.T) {
	engine := newTestRecommendationEngine()

	_, err := engine.GenerateMissionPlan(context.Background(), nil, 0)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "duration_days", vErr.Field)
}

func TestPhaseForTimeline(t *testing.T) {
	assert.Equal(t, domain.PhaseEarly, phaseForTimeline(0.0))
	assert.Equal(t, domain.PhaseEarly, phaseForTimeline(0.33))
	assert.Equal(t, domain.PhaseMid, phaseForTimeline(0.34))
	assert.Equal(t, domain.PhaseMid, phaseForTimeline(0.5))
	assert.Equal(t, domain.PhaseLate, phaseForTimeline(0.67))
	assert.Equal(t, domain.PhaseLate, phaseForTimeline(1.0))
}
