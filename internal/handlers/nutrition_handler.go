package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/services"
)

type NutritionHandler struct {
	profileRepo      profileStore
	nutritionService *services.NutritionService
	mealPlanService  *services.MealPlanService
}

func NewNutritionHandler(
	profileRepo profileStore,
	nutritionService *services.NutritionService,
	mealPlanService *services.MealPlanService,
) *NutritionHandler {
	return &NutritionHandler{
		profileRepo:      profileRepo,
		nutritionService: nutritionService,
		mealPlanService:  mealPlanService,
	}
}

// calculateRequest is filled from query parameters; the calculate endpoint
// is a GET like the rest of the read-only nutrition surface.
type calculateRequest struct {
	Age           int
	Gender        string
	HeightCM      float64
	WeightKG      float64
	ActivityLevel string
	FitnessGoal   string
}

type mealPlanRequest struct {
	Date      string   `json:"date"`
	MealTypes []string `json:"meal_types"`
}

// GetRecommendations returns the daily targets for the authenticated user's
// profile. A failed ML call degrades to the local calculation and is
// surfaced only as a flag, never as an error.
func (h *NutritionHandler) GetRecommendations(c *fiber.Ctx) error {
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

	result, usedFallback := h.nutritionService.PredictOrFallback(c.Context(), services.ProfileInput{
		Age:           profile.Age,
		Gender:        profile.Gender,
		HeightCM:      profile.HeightCM,
		WeightKG:      profile.WeightKG,
		ActivityLevel: profile.ActivityLevel,
		FitnessGoal:   profile.FitnessGoal,
	})

	return respondData(c, fiber.Map{
		"recommendations": result,
		"ml_powered":      !usedFallback,
	})
}

// Calculate runs the same computation over ad-hoc query inputs without
// touching the stored profile.
func (h *NutritionHandler) Calculate(c *fiber.Ctx) error {
	req := calculateRequest{
		Age:           c.QueryInt("age"),
		Gender:        c.Query("gender"),
		HeightCM:      floatQuery(c, "height_cm"),
		WeightKG:      floatQuery(c, "weight_kg"),
		ActivityLevel: c.Query("activity_level"),
		FitnessGoal:   c.Query("fitness_goal"),
	}
	if validationErr := validateCalculateRequest(req); validationErr != "" {
		return respondError(c, fiber.StatusBadRequest, validationErr)
	}

	result, usedFallback := h.nutritionService.PredictOrFallback(c.Context(), services.ProfileInput{
		Age:           req.Age,
		Gender:        req.Gender,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: req.ActivityLevel,
		FitnessGoal:   req.FitnessGoal,
	})

	return respondData(c, fiber.Map{
		"result":     result,
		"ml_powered": !usedFallback,
	})
}

func (h *NutritionHandler) GenerateMealPlan(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	// An empty body means "today, all slots".
	var req mealPlanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		}
		date = parsed
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Profile not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}
	if profile.DailyCalorieTarget <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Complete your profile before generating a meal plan")
	}

	plan, err := h.mealPlanService.GenerateMealPlan(c.Context(), profile, date, req.MealTypes)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate meal plan")
	}

	return respondData(c, fiber.Map{"plan": plan})
}
