package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rumi097/Nutriguide/internal/models"
)

func TestComputeNutritionReferenceProfile(t *testing.T) {
	result := ComputeNutrition(ProfileInput{
		Age:           30,
		Gender:        "male",
		HeightCM:      180,
		WeightKG:      80,
		ActivityLevel: "moderate",
		FitnessGoal:   "lose_weight",
	})

	// 10*80 + 6.25*180 - 5*30 + 5 = 1780; TDEE 1780*1.55 = 2759; -500 = 2259.
	if result.BMR != 1780 {
		t.Fatalf("expected BMR 1780, got %v", result.BMR)
	}
	if result.DailyCalories != 2259 {
		t.Fatalf("expected 2259 daily calories, got %d", result.DailyCalories)
	}
	if result.Macros.Protein != 169 || result.Macros.Carbs != 226 || result.Macros.Fats != 75 {
		t.Fatalf("unexpected macros: %+v", result.Macros)
	}
	if result.BMI != 24.69 {
		t.Fatalf("expected BMI 24.69, got %v", result.BMI)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("expected fallback recommendations")
	}
}

func TestComputeNutritionNonMaleUsesFemaleFormula(t *testing.T) {
	base := ProfileInput{Age: 25, HeightCM: 165, WeightKG: 60, ActivityLevel: "light", FitnessGoal: "maintain_weight"}

	female := base
	female.Gender = "female"
	other := base
	other.Gender = "other"

	if ComputeBMR(female) != ComputeBMR(other) {
		t.Fatalf("expected identical BMR for female and other genders")
	}
	if ComputeBMR(female) != 10*60+6.25*165-5*25-161 {
		t.Fatalf("unexpected female BMR: %v", ComputeBMR(female))
	}
}

func TestComputeNutritionDefaultsUnknownLevelAndGoal(t *testing.T) {
	known := ComputeNutrition(ProfileInput{
		Age: 40, Gender: "male", HeightCM: 175, WeightKG: 70,
		ActivityLevel: "moderate", FitnessGoal: "maintain_weight",
	})
	unknown := ComputeNutrition(ProfileInput{
		Age: 40, Gender: "male", HeightCM: 175, WeightKG: 70,
		ActivityLevel: "extreme", FitnessGoal: "get_shredded",
	})

	if known.DailyCalories != unknown.DailyCalories {
		t.Fatalf("expected unknown level/goal to behave like moderate/no adjustment: %d vs %d",
			known.DailyCalories, unknown.DailyCalories)
	}
}

func TestComputeNutritionMacrosMatchCalories(t *testing.T) {
	profiles := []ProfileInput{
		{Age: 18, Gender: "female", HeightCM: 155, WeightKG: 48, ActivityLevel: "sedentary", FitnessGoal: "gain_weight"},
		{Age: 30, Gender: "male", HeightCM: 180, WeightKG: 80, ActivityLevel: "moderate", FitnessGoal: "lose_weight"},
		{Age: 45, Gender: "other", HeightCM: 170, WeightKG: 95, ActivityLevel: "active", FitnessGoal: "build_muscle"},
		{Age: 67, Gender: "female", HeightCM: 162, WeightKG: 70, ActivityLevel: "very_active", FitnessGoal: "improve_health"},
		{Age: 22, Gender: "male", HeightCM: 195, WeightKG: 110, ActivityLevel: "light", FitnessGoal: "maintain_weight"},
	}

	for _, profile := range profiles {
		result := ComputeNutrition(profile)
		fromMacros := float64(result.Macros.Protein*4 + result.Macros.Carbs*4 + result.Macros.Fats*9)
		// Each macro rounds independently, so allow up to half a gram of
		// each in calorie terms.
		if diff := math.Abs(fromMacros - float64(result.DailyCalories)); diff > 9 {
			t.Fatalf("macros diverge from calorie target for %+v: %v vs %d",
				profile, fromMacros, result.DailyCalories)
		}
	}
}

type stubPredictor struct {
	result *models.NutritionResult
	err    error
	calls  int
}

func (s *stubPredictor) Predict(_ context.Context, _ ProfileInput) (*models.NutritionResult, error) {
	s.calls++
	return s.result, s.err
}

func TestPredictOrFallbackPrefersRemote(t *testing.T) {
	remote := &models.NutritionResult{DailyCalories: 2500, Macros: models.Macros{Protein: 180, Carbs: 250, Fats: 80}}
	service := NewNutritionService(&stubPredictor{result: remote})

	result, usedFallback := service.PredictOrFallback(context.Background(), ProfileInput{
		Age: 30, Gender: "male", HeightCM: 180, WeightKG: 80,
		ActivityLevel: "moderate", FitnessGoal: "lose_weight",
	})
	if usedFallback {
		t.Fatalf("expected remote result to be used")
	}
	if result.DailyCalories != 2500 {
		t.Fatalf("expected remote calories 2500, got %d", result.DailyCalories)
	}
}

func TestPredictOrFallbackFallsBackOnError(t *testing.T) {
	service := NewNutritionService(&stubPredictor{err: errors.New("connection refused")})

	result, usedFallback := service.PredictOrFallback(context.Background(), ProfileInput{
		Age: 30, Gender: "male", HeightCM: 180, WeightKG: 80,
		ActivityLevel: "moderate", FitnessGoal: "lose_weight",
	})
	if !usedFallback {
		t.Fatalf("expected fallback on predictor error")
	}
	if result.DailyCalories != 2259 {
		t.Fatalf("expected local calculation 2259, got %d", result.DailyCalories)
	}
}

func TestPredictOrFallbackWithoutPredictor(t *testing.T) {
	service := NewNutritionService(nil)

	result, usedFallback := service.PredictOrFallback(context.Background(), ProfileInput{
		Age: 30, Gender: "male", HeightCM: 180, WeightKG: 80,
		ActivityLevel: "moderate", FitnessGoal: "lose_weight",
	})
	if !usedFallback || result.DailyCalories != 2259 {
		t.Fatalf("expected local calculation without predictor, got %+v fallback=%v", result, usedFallback)
	}
}
