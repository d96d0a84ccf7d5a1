package services

import (
	"context"
	"log"
	"math"

	"github.com/rumi097/Nutriguide/internal/models"
)

// ProfileInput is the biometric/goal subset every calorie computation needs.
// Inputs are validated at the handler layer; the calculator itself never
// fails.
type ProfileInput struct {
	Age           int
	Gender        string
	HeightCM      float64
	WeightKG      float64
	ActivityLevel string
	FitnessGoal   string
}

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

var goalAdjustments = map[string]float64{
	"lose_weight":     -500,
	"maintain_weight": 0,
	"gain_weight":     500,
	"build_muscle":    300,
	"improve_health":  0,
}

var fallbackRecommendations = []string{
	"Drink at least 8 glasses of water daily",
	"Include fruits and vegetables in every meal",
	"Aim for 7-9 hours of sleep per night",
}

// ComputeBMI returns weight(kg) / height(m)^2, rounded to 2 decimals.
func ComputeBMI(weightKG, heightCM float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	heightM := heightCM / 100
	return math.Round(weightKG/(heightM*heightM)*100) / 100
}

// ComputeBMR uses the Mifflin-St Jeor equation. Every non-male gender value
// uses the female formula, matching the product's established behavior.
func ComputeBMR(input ProfileInput) float64 {
	bmr := 10*input.WeightKG + 6.25*input.HeightCM - 5*float64(input.Age)
	if input.Gender == "male" {
		return bmr + 5
	}
	return bmr - 161
}

// ComputeNutrition derives BMI, BMR, the daily calorie target and a fixed
// 30/40/30 macro split from a profile. TDEE = BMR x activity multiplier
// (unknown level treated as moderate); the calorie target shifts TDEE by the
// goal adjustment (unknown goal means no adjustment).
func ComputeNutrition(input ProfileInput) models.NutritionResult {
	bmr := ComputeBMR(input)

	multiplier, ok := activityMultipliers[input.ActivityLevel]
	if !ok {
		multiplier = 1.55
	}
	tdee := bmr * multiplier

	adjustment := goalAdjustments[input.FitnessGoal]
	dailyCalories := int(math.Round(tdee + adjustment))

	// 30% protein, 40% carbs, 30% fats at 4/4/9 calories per gram. The
	// ratio is intentionally goal-independent.
	calories := float64(dailyCalories)
	macros := models.Macros{
		Protein: int(math.Round(calories * 0.30 / 4)),
		Carbs:   int(math.Round(calories * 0.40 / 4)),
		Fats:    int(math.Round(calories * 0.30 / 9)),
	}

	return models.NutritionResult{
		DailyCalories:   dailyCalories,
		Macros:          macros,
		BMI:             ComputeBMI(input.WeightKG, input.HeightCM),
		BMR:             bmr,
		Recommendations: fallbackRecommendations,
	}
}

// MLPredictor is the remote prediction boundary. Implementations must treat
// any non-success response as an error; the caller owns the fallback.
type MLPredictor interface {
	Predict(ctx context.Context, input ProfileInput) (*models.NutritionResult, error)
}

type NutritionService struct {
	ml MLPredictor
}

func NewNutritionService(ml MLPredictor) *NutritionService {
	return &NutritionService{ml: ml}
}

// PredictOrFallback tries the ML service and falls back to the local
// calculator on any failure. The second return reports whether the fallback
// was used; callers surface it as a warning, never as an error.
func (s *NutritionService) PredictOrFallback(ctx context.Context, input ProfileInput) (models.NutritionResult, bool) {
	if s.ml != nil {
		result, err := s.ml.Predict(ctx, input)
		if err == nil && result != nil {
			return *result, false
		}
		if err != nil {
			log.Printf("ML service error: %v (using fallback calculation)", err)
		}
	}
	return ComputeNutrition(input), true
}
