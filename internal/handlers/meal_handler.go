package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
)

const maxMealRecommendations = 10

type mealCatalogStore interface {
	List(ctx context.Context, filter repository.MealListFilter) ([]models.Meal, int, error)
	GetByID(ctx context.Context, id int64) (*models.Meal, error)
	CategorySummary(ctx context.Context) ([]models.CategorySummary, error)
}

type MealHandler struct {
	mealRepo        mealCatalogStore
	profileRepo     profileStore
	mealPlanService *services.MealPlanService
}

func NewMealHandler(mealRepo mealCatalogStore, profileRepo profileStore, mealPlanService *services.MealPlanService) *MealHandler {
	return &MealHandler{
		mealRepo:        mealRepo,
		profileRepo:     profileRepo,
		mealPlanService: mealPlanService,
	}
}

func (h *MealHandler) ListMeals(c *fiber.Ctx) error {
	page, limit := parsePageParams(c)

	filter := repository.MealListFilter{
		Category:    strings.TrimSpace(c.Query("category")),
		Search:      strings.TrimSpace(c.Query("search")),
		MaxCalories: floatQuery(c, "max_calories"),
		MinProtein:  floatQuery(c, "min_protein"),
		Offset:      (page - 1) * limit,
		Limit:       limit,
	}
	if tags := strings.TrimSpace(c.Query("dietary_tags")); tags != "" {
		filter.DietaryTags = splitCommaList(tags)
	}

	meals, total, err := h.mealRepo.List(c.Context(), filter)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to list meals")
	}

	return respondData(c, fiber.Map{
		"meals":      meals,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *MealHandler) GetMeal(c *fiber.Ctx) error {
	mealID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || mealID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid meal id")
	}

	meal, err := h.mealRepo.GetByID(c.Context(), mealID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Meal not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch meal")
	}
	if !meal.IsActive {
		return respondError(c, fiber.StatusNotFound, "Meal not found")
	}

	return respondData(c, fiber.Map{"meal": meal})
}

// GetRecommendations returns meals that fit the user's preferences and
// allergies around a per-meal calorie target. The target defaults to a
// third of the profile's daily budget and can be overridden per request.
func (h *MealHandler) GetRecommendations(c *fiber.Ctx) error {
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

	calorieTarget := floatQuery(c, "calorie_target")
	if calorieTarget <= 0 {
		calorieTarget = float64(profile.DailyCalorieTarget) / 3
	}
	tolerance := floatQuery(c, "tolerance")

	meals, err := h.mealPlanService.FindSuitableMeals(
		c.Context(),
		profile.DietaryPreferences,
		profile.Allergies,
		calorieTarget,
		tolerance,
	)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to find suitable meals")
	}
	if len(meals) > maxMealRecommendations {
		meals = meals[:maxMealRecommendations]
	}

	return respondData(c, fiber.Map{
		"meals":          meals,
		"calorie_target": calorieTarget,
	})
}

func (h *MealHandler) GetCategorySummary(c *fiber.Ctx) error {
	summary, err := h.mealRepo.CategorySummary(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to summarize categories")
	}
	return respondData(c, fiber.Map{"categories": summary})
}

func floatQuery(c *fiber.Ctx, key string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(c.Query(key)), 64)
	if err != nil {
		return 0
	}
	return value
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
