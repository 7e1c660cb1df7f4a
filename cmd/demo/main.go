// Command demo runs an end-to-end simulation for a sample astronaut and
// mission, printing the health evolution, risk assessment, ranked
// countermeasures, and phased mission plan.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/domain"
	"github.com/ahse-server/internal/service"
)

func sampleAstronaut() domain.AstronautProfile {
	return domain.AstronautProfile{
		ID:             "demo-astronaut-001",
		Name:           "Commander Sarah Chen",
		Age:            38,
		Gender:         "female",
		MissionHistory: []string{"ISS Expedition 64", "Artemis III"},
		BaselineHealth: domain.HealthMetrics{
			MuscleMassKg:          70.0,
			BoneDensityTScore:     0.5,
			CardiovascularFitness: 0.85,
			ImmuneFunction:        0.90,
			CognitivePerformance:  0.88,
			SleepQuality:          0.80,
			DNADamageLevel:        0.05,
			StressLevel:           0.20,
		},
	}
}

func sampleMission() domain.Mission {
	return domain.Mission{
		Type:              domain.MarsTransit,
		DurationDays:      210,
		MicrogravityLevel: 1.0,
		RadiationExposure: 0.5,
	}
}

func printHeader(title string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf(" %s\n", title)
	fmt.Println(strings.Repeat("=", 60))
}

func printSection(title string) {
	fmt.Printf("\n* %s\n", title)
	fmt.Println(strings.Repeat("-", 40))
}

func riskLabel(level float64) string {
	switch {
	case level > 0.7:
		return "HIGH"
	case level > 0.4:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	simEngine := service.NewSimulationEngine(logger,
		domain.DefaultSimulationConfig(),
		domain.DefaultRecommendationConfig().Thresholds)
	recEngine := service.NewRecommendationEngine(logger,
		domain.DefaultRecommendationConfig())

	printHeader("ASTRONAUT HEALTH SIMULATION ENGINE DEMO")

	astronaut := sampleAstronaut()
	mission := sampleMission()

	printSection("Mission Data")
	fmt.Printf("Astronaut: %s\n", astronaut.Name)
	fmt.Printf("   Age: %d, Gender: %s\n", astronaut.Age, astronaut.Gender)
	fmt.Printf("   Mission History: %s\n", strings.Join(astronaut.MissionHistory, ", "))
	fmt.Printf("\nMission: %s\n", mission.Type)
	fmt.Printf("   Duration: %d days\n", mission.DurationDays)
	fmt.Printf("   Microgravity Level: %.1f\n", mission.MicrogravityLevel)
	fmt.Printf("   Radiation Exposure: %.1f mSv/day\n", mission.RadiationExposure)

	printSection("Baseline Health Assessment")
	baseline := astronaut.BaselineHealth
	fmt.Printf("Muscle Mass: %.1f kg\n", baseline.MuscleMassKg)
	fmt.Printf("Bone Density: %.2f T-score\n", baseline.BoneDensityTScore)
	fmt.Printf("Overall Health Score: %.2f\n", baseline.OverallHealthScore())
	fmt.Printf("Health Status: %s\n", baseline.Status())

	printSection("Running Health Simulation")
	ctx := context.Background()
	result, err := simEngine.SimulateMission(ctx, astronaut, mission)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Predictions generated: %d\n", len(result.Predictions))
	fmt.Printf("Simulation accuracy: %.1f%%\n", result.SimulationAccuracy*100)
	fmt.Printf("Mission success probability: %.1f%%\n", result.MissionSuccessProbability*100)

	printSection("Health Evolution Analysis")
	initial := result.Predictions[0]
	mid := result.Predictions[len(result.Predictions)/2]
	final := result.FinalPrediction()
	for _, p := range []domain.Prediction{initial, mid, *final} {
		fmt.Printf("\nDay %d:\n", p.DayOffset)
		fmt.Printf("   Muscle Mass: %.1f kg\n", p.HealthMetrics.MuscleMassKg)
		fmt.Printf("   Bone Density: %.2f\n", p.HealthMetrics.BoneDensityTScore)
		fmt.Printf("   Overall Health: %.2f (%s)\n",
			p.HealthMetrics.OverallHealthScore(), p.HealthMetrics.Status())
	}

	printSection("Risk Assessment")
	if len(result.RiskAssessment) == 0 {
		fmt.Println("No significant risk factors identified")
	} else {
		for _, cat := range domain.RiskCategories {
			level, ok := result.RiskAssessment[cat]
			if !ok {
				continue
			}
			fmt.Printf("   %s: %.2f (%s)\n", cat, level, riskLabel(level))
		}
	}

	printSection("Ranked Countermeasure Recommendations")
	recommendations, err := recEngine.GenerateRecommendations(ctx,
		final.HealthMetrics, mission, final.RiskFactors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommendation generation failed: %v\n", err)
		os.Exit(1)
	}
	if len(recommendations) == 0 {
		fmt.Println("Current health protocols are adequate")
	}
	for i, rec := range recommendations {
		if i >= 5 {
			break
		}
		fmt.Printf("   %d. [%s] %s (score %.2f)\n", i+1, rec.Priority, rec.Title, rec.Score)
		fmt.Printf("      %s\n", rec.Description)
		fmt.Printf("      Expected Benefit: %.1f%%\n", rec.ExpectedBenefit*100)
	}

	printSection("Mission-Level Countermeasures")
	if len(result.RecommendedCountermeasures) == 0 {
		fmt.Println("No mission-level interventions required")
	}
	for i, cm := range result.RecommendedCountermeasures {
		fmt.Printf("   %d. %s\n", i+1, cm)
	}

	printSection("Phased Mission Plan")
	plan, err := recEngine.GenerateMissionPlan(ctx, recommendations, mission.DurationDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mission plan generation failed: %v\n", err)
		os.Exit(1)
	}
	for _, phase := range domain.PhaseLabels {
		fmt.Printf("\n%s:\n", phase)
		if len(plan[phase]) == 0 {
			fmt.Println("   No specific interventions required")
			continue
		}
		for i, rec := range plan[phase] {
			if i >= 3 {
				break
			}
			fmt.Printf("   - %s\n", rec.Title)
		}
	}

	printHeader("DEMO COMPLETED SUCCESSFULLY")
}
