package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/domain"
)

// candidateTemplate is an intervention blueprint for one risk category.
// ExpectedBenefit scales with the triggering severity between baseBenefit
// and baseBenefit+benefitSpan; cost, feasibility and timeline are
// intrinsic estimates in [0,1].
type candidateTemplate struct {
	title       string
	description string
	baseBenefit float64
	benefitSpan float64
	cost        float64
	feasibility float64
	timeline    float64
}

// interventionTemplates holds the candidate countermeasures per risk
// category. Timelines place an intervention on the mission calendar:
// low values schedule early, high values late.
var interventionTemplates = map[domain.RiskCategory][]candidateTemplate{
	domain.RiskMuscleAtrophy: {
		{
			title:       "Resistance Exercise Protocol",
			description: "Daily ARED sessions targeting major muscle groups to slow atrophy",
			baseBenefit: 0.5, benefitSpan: 0.4, cost: 0.3, feasibility: 0.9, timeline: 0.10,
		},
		{
			title:       "Protein Intake Optimization",
			description: "Adjusted macronutrient plan supporting muscle protein synthesis",
			baseBenefit: 0.3, benefitSpan: 0.3, cost: 0.2, feasibility: 0.8, timeline: 0.25,
		},
	},
	domain.RiskBoneLoss: {
		{
			title:       "Load-Bearing Countermeasure",
			description: "Axial loading harness sessions with bisphosphonate review",
			baseBenefit: 0.45, benefitSpan: 0.4, cost: 0.4, feasibility: 0.7, timeline: 0.20,
		},
	},
	domain.RiskCardiovascularDecline: {
		{
			title:       "Aerobic Conditioning Protocol",
			description: "Interval cycling and treadmill sessions to maintain VO2 max",
			baseBenefit: 0.45, benefitSpan: 0.35, cost: 0.3, feasibility: 0.85, timeline: 0.30,
		},
	},
	domain.RiskImmuneSuppression: {
		{
			title:       "Immune Monitoring and Supplementation",
			description: "Biweekly immune panel with targeted micronutrient supplementation",
			baseBenefit: 0.35, benefitSpan: 0.35, cost: 0.25, feasibility: 0.75, timeline: 0.50,
		},
	},
	domain.RiskCognitiveDecline: {
		{
			title:       "Cognitive Load Management",
			description: "Task rotation and structured rest to preserve cognitive performance",
			baseBenefit: 0.35, benefitSpan: 0.3, cost: 0.15, feasibility: 0.8, timeline: 0.45,
		},
	},
	domain.RiskSleepDisruption: {
		{
			title:       "Sleep Hygiene Protocol",
			description: "Fixed sleep schedule with circadian lighting adjustments",
			baseBenefit: 0.4, benefitSpan: 0.3, cost: 0.1, feasibility: 0.9, timeline: 0.35,
		},
	},
	domain.RiskRadiationDamage: {
		{
			title:       "Radiation Shielding Adjustment",
			description: "Reconfigure sleeping quarters shielding and EVA scheduling windows",
			baseBenefit: 0.5, benefitSpan: 0.4, cost: 0.6, feasibility: 0.5, timeline: 0.15,
		},
	},
	domain.RiskPsychologicalStress: {
		{
			title:       "Psychological Support Program",
			description: "Scheduled counseling sessions and private family conferences",
			baseBenefit: 0.4, benefitSpan: 0.35, cost: 0.2, feasibility: 0.85, timeline: 0.60,
		},
	},
}

// RecommendationEngine scores, ranks, and phases candidate interventions
// from a risk-factor map. Stateless and safe for concurrent use.
type RecommendationEngine struct {
	logger *logrus.Logger
	cfg    domain.RecommendationConfig
}

// NewRecommendationEngine creates a recommendation engine over a
// configuration snapshot.
func NewRecommendationEngine(logger *logrus.Logger, cfg domain.RecommendationConfig) *RecommendationEngine {
	return &RecommendationEngine{logger: logger, cfg: cfg}
}

// GenerateRecommendations synthesizes, scores, and ranks interventions
// for every risk category whose severity exceeds the low-risk threshold.
// An empty risk-factor map yields an empty slice and no error: current
// protocols being adequate is the caller's interpretation, not a failure.
func (e *RecommendationEngine) GenerateRecommendations(ctx context.Context, health domain.HealthMetrics, mission domain.Mission, riskFactors map[domain.RiskCategory]float64) ([]domain.Recommendation, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := health.Validate(); err != nil {
		return nil, err
	}
	if err := mission.Validate(); err != nil {
		return nil, err
	}
	for cat, sev := range riskFactors {
		if !cat.IsValid() {
			return nil, domain.NewValidationError("risk_factors", "unknown risk category", string(cat))
		}
		if sev < 0 || sev > 1 {
			return nil, domain.NewValidationError("risk_factors", "severity must be within [0, 1]", sev)
		}
	}

	recommendations := make([]domain.Recommendation, 0)
	if len(riskFactors) == 0 {
		return recommendations, nil
	}

	stress := mission.StressMultiplier()
	for _, cat := range domain.RiskCategories {
		severity, ok := riskFactors[cat]
		if !ok || severity <= e.cfg.Thresholds.Low {
			continue
		}
		for _, tpl := range interventionTemplates[cat] {
			rec := e.buildCandidate(cat, severity, stress, tpl)
			recommendations = append(recommendations, rec)
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		a, b := recommendations[i], recommendations[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ExpectedBenefit != b.ExpectedBenefit {
			return a.ExpectedBenefit > b.ExpectedBenefit
		}
		return a.Title < b.Title
	})

	if len(recommendations) > e.cfg.MaxRecommendations {
		recommendations = recommendations[:e.cfg.MaxRecommendations]
	}

	e.logger.WithFields(logrus.Fields{
		"risk_categories": len(riskFactors),
		"recommendations": len(recommendations),
		"mission_type":    mission.Type.String(),
	}).Info("Generated countermeasure recommendations")

	return recommendations, nil
}

// buildCandidate instantiates one template for a triggering severity.
// Higher severity raises the benefit ceiling; harsher missions shave
// feasibility.
func (e *RecommendationEngine) buildCandidate(cat domain.RiskCategory, severity, stress float64, tpl candidateTemplate) domain.Recommendation {
	benefit := clamp(tpl.baseBenefit+tpl.benefitSpan*severity, 0, 1)
	feasibility := clamp(tpl.feasibility-0.05*(stress-1), 0, 1)

	rec := domain.Recommendation{
		Title:           tpl.title,
		Description:     tpl.description,
		Category:        cat,
		ExpectedBenefit: benefit,
		Cost:            tpl.cost,
		Feasibility:     feasibility,
		Timeline:        tpl.timeline,
	}
	rec.Score = e.cfg.BenefitWeight*rec.ExpectedBenefit +
		e.cfg.FeasibilityWeight*rec.Feasibility -
		e.cfg.CostWeight*rec.Cost -
		e.cfg.TimelineWeight*rec.Timeline
	rec.Priority = e.priorityFor(severity, rec.Score)
	return rec
}

// priorityFor maps the triggering severity and final score into the 1..5
// priority buckets via the configured thresholds.
func (e *RecommendationEngine) priorityFor(severity, score float64) domain.Priority {
	switch {
	case severity >= e.cfg.Thresholds.High:
		return domain.PriorityCritical
	case severity >= e.cfg.Thresholds.Medium:
		return domain.PriorityHigh
	case score > 0.5:
		return domain.PriorityMedium
	case severity > e.cfg.Thresholds.Low:
		return domain.PriorityLow
	default:
		return domain.PriorityOptional
	}
}

// GenerateMissionPlan partitions the mission into three contiguous phases
// of roughly equal length and schedules each recommendation into the
// phase implied by its timeline estimate. Relative order within a phase
// follows the input order, so a score-sorted input stays score-sorted per
// phase. Every recommendation lands in exactly one phase; an empty input
// produces a plan whose phases are all empty.
func (e *RecommendationEngine) GenerateMissionPlan(ctx context.Context, recommendations []domain.Recommendation, durationDays int) (domain.MissionPlan, error) {
	if durationDays <= 0 {
		return nil, domain.NewValidationError("duration_days", "must be positive", durationDays)
	}

	plan := domain.MissionPlan{
		domain.PhaseEarly: {},
		domain.PhaseMid:   {},
		domain.PhaseLate:  {},
	}
	for _, rec := range recommendations {
		label := phaseForTimeline(rec.Timeline)
		plan[label] = append(plan[label], rec)
	}

	e.logger.WithFields(logrus.Fields{
		"duration_days": durationDays,
		"early":         len(plan[domain.PhaseEarly]),
		"mid":           len(plan[domain.PhaseMid]),
		"late":          len(plan[domain.PhaseLate]),
	}).Info("Generated phased mission plan")

	return plan, nil
}

// phaseForTimeline buckets a normalized timeline estimate into thirds.
func phaseForTimeline(timeline float64) string {
	switch {
	case timeline < 1.0/3.0:
		return domain.PhaseEarly
	case timeline < 2.0/3.0:
		return domain.PhaseMid
	default:
		return domain.PhaseLate
	}
}
