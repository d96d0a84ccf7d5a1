package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/services"
)

type profileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

type accountStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ProfileHandler struct {
	profileRepo      profileStore
	userRepo         accountStore
	nutritionService *services.NutritionService
}

func NewProfileHandler(profileRepo profileStore, userRepo accountStore, nutritionService *services.NutritionService) *ProfileHandler {
	return &ProfileHandler{
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		nutritionService: nutritionService,
	}
}

type updateProfileRequest struct {
	Age                *int      `json:"age"`
	Gender             *string   `json:"gender"`
	HeightCM           *float64  `json:"height_cm"`
	WeightKG           *float64  `json:"weight_kg"`
	TargetWeightKG     *float64  `json:"target_weight_kg"`
	ActivityLevel      *string   `json:"activity_level"`
	FitnessGoal        *string   `json:"fitness_goal"`
	DietaryPreferences *[]string `json:"dietary_preferences"`
	Allergies          *[]string `json:"allergies"`
	WaterGoalML        *int      `json:"water_goal_ml"`
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return respondData(c, fiber.Map{"profile": profile})
}

// UpdateProfile applies a partial update. Changing any biometric or goal
// field recomputes BMI and the daily targets; dietary and hydration fields
// are applied as-is.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if validationErr := validateProfileUpdateRequest(req); validationErr != "" {
		return respondError(c, fiber.StatusBadRequest, validationErr)
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	targetsDirty := false
	if req.Age != nil && *req.Age != profile.Age {
		profile.Age = *req.Age
		targetsDirty = true
	}
	if req.Gender != nil && *req.Gender != profile.Gender {
		profile.Gender = *req.Gender
		targetsDirty = true
	}
	if req.HeightCM != nil && *req.HeightCM != profile.HeightCM {
		profile.HeightCM = *req.HeightCM
		targetsDirty = true
	}
	if req.WeightKG != nil && *req.WeightKG != profile.WeightKG {
		profile.WeightKG = *req.WeightKG
		if profile.InitialWeightKG == nil {
			profile.InitialWeightKG = req.WeightKG
		}
		targetsDirty = true
	}
	if req.ActivityLevel != nil && *req.ActivityLevel != profile.ActivityLevel {
		profile.ActivityLevel = *req.ActivityLevel
		targetsDirty = true
	}
	if req.FitnessGoal != nil && *req.FitnessGoal != profile.FitnessGoal {
		profile.FitnessGoal = *req.FitnessGoal
		targetsDirty = true
	}
	if req.TargetWeightKG != nil {
		profile.TargetWeightKG = req.TargetWeightKG
	}
	if req.DietaryPreferences != nil {
		profile.DietaryPreferences = *req.DietaryPreferences
	}
	if req.Allergies != nil {
		profile.Allergies = *req.Allergies
	}
	if req.WaterGoalML != nil {
		profile.WaterGoalML = *req.WaterGoalML
	}

	if targetsDirty {
		result, _ := h.nutritionService.PredictOrFallback(c.Context(), services.ProfileInput{
			Age:           profile.Age,
			Gender:        profile.Gender,
			HeightCM:      profile.HeightCM,
			WeightKG:      profile.WeightKG,
			ActivityLevel: profile.ActivityLevel,
			FitnessGoal:   profile.FitnessGoal,
		})
		profile.BMI = result.BMI
		profile.DailyCalorieTarget = result.DailyCalories
		profile.Macros = result.Macros
	}

	if err := h.profileRepo.Save(c.Context(), profile); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return respondMessage(c, fiber.StatusOK, "Profile updated", fiber.Map{
		"profile":            profile,
		"targets_recomputed": targetsDirty,
	})
}

func (h *ProfileHandler) GetDashboard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return respondData(c, fiber.Map{
		"user":    user,
		"profile": profile,
		"insights": fiber.Map{
			"bmi_category":         bmiCategory(profile.BMI),
			"weight_status":        weightStatus(profile),
			"activity_description": activityDescription(profile.ActivityLevel),
			"goal_recommendation":  goalRecommendation(profile.FitnessGoal),
		},
	})
}

func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	if err := h.userRepo.Delete(c.Context(), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete account")
	}

	return respondMessage(c, fiber.StatusOK, "Account deleted", nil)
}

func bmiCategory(bmi float64) string {
	switch {
	case bmi <= 0:
		return "unknown"
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

func weightStatus(profile *models.UserProfile) string {
	if profile.TargetWeightKG == nil || *profile.TargetWeightKG <= 0 {
		return "No target weight set"
	}
	diff := profile.WeightKG - *profile.TargetWeightKG
	if math.Abs(diff) < 0.5 {
		return "At target weight"
	}
	if diff > 0 {
		return fmt.Sprintf("%.1f kg above target", diff)
	}
	return fmt.Sprintf("%.1f kg below target", -diff)
}

func activityDescription(level string) string {
	descriptions := map[string]string{
		"sedentary":   "Little or no exercise",
		"light":       "Light exercise 1-3 days per week",
		"moderate":    "Moderate exercise 3-5 days per week",
		"active":      "Hard exercise 6-7 days per week",
		"very_active": "Very hard exercise and a physical job",
	}
	if description, ok := descriptions[level]; ok {
		return description
	}
	return "Moderate exercise 3-5 days per week"
}

func goalRecommendation(goal string) string {
	recommendations := map[string]string{
		"lose_weight":     "Aim for a steady deficit; prioritize protein to preserve muscle",
		"maintain_weight": "Keep calories near your target and stay consistent",
		"gain_weight":     "Eat in a surplus with nutrient-dense meals",
		"build_muscle":    "Pair your surplus with resistance training and high protein",
		"improve_health":  "Focus on whole foods, hydration and regular activity",
	}
	if recommendation, ok := recommendations[goal]; ok {
		return recommendation
	}
	return "Keep calories near your target and stay consistent"
}
