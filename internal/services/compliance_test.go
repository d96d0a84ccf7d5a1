package services

import (
	"math"
	"testing"

	"github.com/rumi097/Nutriguide/internal/models"
)

func TestScoreComplianceExactMatch(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{Calories: 2000, Protein: 150, Carbohydrates: 200, Fats: 67},
		models.NutritionTargets{Calories: 2000, Protein: 150, Carbohydrates: 200, Fats: 67},
	)
	if score.CalorieCompliance != 100 {
		t.Fatalf("expected calorie compliance 100, got %v", score.CalorieCompliance)
	}
	if score.MacroCompliance != 100 {
		t.Fatalf("expected macro compliance 100, got %v", score.MacroCompliance)
	}
}

func TestScoreComplianceNothingEaten(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{},
		models.NutritionTargets{Calories: 2000, Protein: 150, Carbohydrates: 200, Fats: 67},
	)
	if score.CalorieCompliance != 0 {
		t.Fatalf("expected calorie compliance 0, got %v", score.CalorieCompliance)
	}
	if score.MacroCompliance != 0 {
		t.Fatalf("expected macro compliance 0, got %v", score.MacroCompliance)
	}
}

func TestScoreComplianceZeroTargetGuards(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{Calories: 1800, Protein: 120, Carbohydrates: 180, Fats: 60},
		models.NutritionTargets{},
	)
	if score.CalorieCompliance != 0 || score.MacroCompliance != 0 {
		t.Fatalf("expected zeroed compliance for zero calorie target, got %+v", score)
	}
}

func TestScoreComplianceSymmetricPenalty(t *testing.T) {
	targets := models.NutritionTargets{Calories: 2000}

	under := ScoreCompliance(models.NutritionTotals{Calories: 1800}, targets)
	over := ScoreCompliance(models.NutritionTotals{Calories: 2200}, targets)

	if math.Abs(under.CalorieCompliance-over.CalorieCompliance) > 1e-9 {
		t.Fatalf("expected symmetric penalty, got under=%v over=%v",
			under.CalorieCompliance, over.CalorieCompliance)
	}
	if math.Abs(under.CalorieCompliance-90) > 1e-9 {
		t.Fatalf("expected 90 for 10%% deviation, got %v", under.CalorieCompliance)
	}
}

func TestScoreComplianceExtremeOvereatingClampsToZero(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{Calories: 6000},
		models.NutritionTargets{Calories: 2000},
	)
	if score.CalorieCompliance != 0 {
		t.Fatalf("expected clamp to 0, got %v", score.CalorieCompliance)
	}
}

func TestScoreComplianceUnsetMacroTargetCountsAsMet(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{Calories: 2000, Protein: 75},
		models.NutritionTargets{Calories: 2000, Protein: 150},
	)
	// protein 50, carbs 100 (unset), fats 100 (unset) -> mean 250/3
	want := 250.0 / 3
	if math.Abs(score.MacroCompliance-want) > 1e-9 {
		t.Fatalf("expected macro compliance %v, got %v", want, score.MacroCompliance)
	}
}

func TestScoreComplianceMacroCapsAtHundred(t *testing.T) {
	score := ScoreCompliance(
		models.NutritionTotals{Calories: 2000, Protein: 400, Carbohydrates: 500, Fats: 200},
		models.NutritionTargets{Calories: 2000, Protein: 150, Carbohydrates: 200, Fats: 67},
	)
	if score.MacroCompliance != 100 {
		t.Fatalf("expected macro compliance capped at 100, got %v", score.MacroCompliance)
	}
}
