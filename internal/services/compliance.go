package services

import "github.com/rumi097/Nutriguide/internal/models"

// ScoreCompliance derives the two percentage scores from a day's totals and
// targets. It is a pure function of its inputs and is recomputed after every
// mutation of either.
//
// Calorie compliance penalizes over- and under-eating symmetrically: 100 at
// an exact match, decaying equally in both directions. A calorie target of
// zero (or less) makes both scores zero rather than dividing by zero.
// Per-macro compliance caps at 100 and treats an unset macro target as fully
// met; the macro score is the mean of the three.
func ScoreCompliance(totals models.NutritionTotals, targets models.NutritionTargets) models.Compliance {
	if targets.Calories <= 0 {
		return models.Compliance{}
	}

	ratio := totals.Calories / targets.Calories
	calorieScore := 100 - abs(100-ratio*100)
	if calorieScore < 0 {
		calorieScore = 0
	}
	if calorieScore > 100 {
		calorieScore = 100
	}

	macroScore := (macroCompliance(totals.Protein, targets.Protein) +
		macroCompliance(totals.Carbohydrates, targets.Carbohydrates) +
		macroCompliance(totals.Fats, targets.Fats)) / 3

	return models.Compliance{
		CalorieCompliance: calorieScore,
		MacroCompliance:   macroScore,
	}
}

func macroCompliance(actual, target float64) float64 {
	if target <= 0 {
		return 100
	}
	score := actual / target * 100
	if score > 100 {
		return 100
	}
	return score
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
