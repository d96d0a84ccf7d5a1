package handlers

import (
	"strings"
)

var allowedGenders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

var allowedActivityLevels = map[string]struct{}{
	"sedentary":   {},
	"light":       {},
	"moderate":    {},
	"active":      {},
	"very_active": {},
}

var allowedFitnessGoals = map[string]struct{}{
	"lose_weight":     {},
	"maintain_weight": {},
	"gain_weight":     {},
	"build_muscle":    {},
	"improve_health":  {},
}

var allowedDietaryPreferences = map[string]struct{}{
	"none":        {},
	"vegetarian":  {},
	"vegan":       {},
	"pescatarian": {},
	"keto":        {},
	"paleo":       {},
	"gluten_free": {},
	"dairy_free":  {},
	"halal":       {},
	"kosher":      {},
}

func validateRegisterRequest(req registerRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if req.Age < 10 || req.Age > 120 {
		return "age must be between 10 and 120"
	}
	if err := validateGender(req.Gender); err != "" {
		return err
	}
	if req.HeightCM < 50 {
		return "height_cm must be at least 50"
	}
	if req.WeightKG < 20 {
		return "weight_kg must be at least 20"
	}
	if err := validateActivityLevel(req.ActivityLevel); err != "" {
		return err
	}
	if err := validateFitnessGoal(req.FitnessGoal); err != "" {
		return err
	}
	if err := validateDietaryPreferences(req.DietaryPreferences); err != "" {
		return err
	}
	return ""
}

func validateProfileUpdateRequest(req updateProfileRequest) string {
	if req.Age != nil && (*req.Age < 10 || *req.Age > 120) {
		return "age must be between 10 and 120"
	}
	if req.Gender != nil {
		if err := validateGender(*req.Gender); err != "" {
			return err
		}
	}
	if req.HeightCM != nil && *req.HeightCM < 50 {
		return "height_cm must be at least 50"
	}
	if req.WeightKG != nil && *req.WeightKG < 20 {
		return "weight_kg must be at least 20"
	}
	if req.TargetWeightKG != nil && *req.TargetWeightKG < 20 {
		return "target_weight_kg must be at least 20"
	}
	if req.ActivityLevel != nil {
		if err := validateActivityLevel(*req.ActivityLevel); err != "" {
			return err
		}
	}
	if req.FitnessGoal != nil {
		if err := validateFitnessGoal(*req.FitnessGoal); err != "" {
			return err
		}
	}
	if req.DietaryPreferences != nil {
		if err := validateDietaryPreferences(*req.DietaryPreferences); err != "" {
			return err
		}
	}
	if req.WaterGoalML != nil && *req.WaterGoalML <= 0 {
		return "water_goal_ml must be greater than 0"
	}
	return ""
}

func validateCalculateRequest(req calculateRequest) string {
	if req.Age < 10 || req.Age > 120 {
		return "age must be between 10 and 120"
	}
	if err := validateGender(req.Gender); err != "" {
		return err
	}
	if req.HeightCM < 50 {
		return "height_cm must be at least 50"
	}
	if req.WeightKG < 20 {
		return "weight_kg must be at least 20"
	}
	if err := validateActivityLevel(req.ActivityLevel); err != "" {
		return err
	}
	if err := validateFitnessGoal(req.FitnessGoal); err != "" {
		return err
	}
	return ""
}

func validateGender(gender string) string {
	if _, ok := allowedGenders[strings.TrimSpace(gender)]; !ok {
		return "gender must be one of: male, female, other"
	}
	return ""
}

func validateActivityLevel(level string) string {
	if _, ok := allowedActivityLevels[strings.TrimSpace(level)]; !ok {
		return "activity_level must be one of: sedentary, light, moderate, active, very_active"
	}
	return ""
}

func validateFitnessGoal(goal string) string {
	if _, ok := allowedFitnessGoals[strings.TrimSpace(goal)]; !ok {
		return "fitness_goal must be one of: lose_weight, maintain_weight, gain_weight, build_muscle, improve_health"
	}
	return ""
}

func validateDietaryPreferences(preferences []string) string {
	for _, preference := range preferences {
		if _, ok := allowedDietaryPreferences[strings.TrimSpace(preference)]; !ok {
			return "dietary_preferences contains an unsupported value: " + preference
		}
	}
	return ""
}
