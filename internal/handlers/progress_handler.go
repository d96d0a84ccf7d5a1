package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
)

type progressApplicationService interface {
	Today(ctx context.Context, userID int64, targets models.NutritionTargets) (*models.DailyProgress, error)
	LogMeal(ctx context.Context, userID int64, targets models.NutritionTargets, entry models.MealLog) (*models.DailyProgress, error)
	RemoveMeal(ctx context.Context, userID int64, targets models.NutritionTargets, logID int64) (*models.DailyProgress, error)
	LogWater(ctx context.Context, userID int64, targets models.NutritionTargets, amountML int) (int, error)
	LogWeight(ctx context.Context, userID int64, targets models.NutritionTargets, weight float64) (*models.DailyProgress, error)
	History(ctx context.Context, userID int64, from, to time.Time) ([]models.DailyProgress, models.ProgressSummary, error)
	Analytics(ctx context.Context, userID int64, lookbackDays int) (models.ProgressAnalytics, error)
	WeeklySummary(ctx context.Context, userID int64) ([]models.DailyProgress, models.WeeklySummary, error)
	WeightHistory(ctx context.Context, userID int64, lookbackDays int) ([]repository.WeightEntry, error)
}

type progressNotifier interface {
	NotifyProgress(userID int64, eventType string, payload any)
}

type weightProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
	UpdateWeight(ctx context.Context, userID int64, weightKG float64) error
}

type mealSnapshotStore interface {
	GetByID(ctx context.Context, id int64) (*models.Meal, error)
}

type ProgressHandler struct {
	progressService progressApplicationService
	profileRepo     weightProfileStore
	mealRepo        mealSnapshotStore
	notifier        progressNotifier
}

func NewProgressHandler(
	progressService progressApplicationService,
	profileRepo weightProfileStore,
	mealRepo mealSnapshotStore,
	notifier progressNotifier,
) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		profileRepo:     profileRepo,
		mealRepo:        mealRepo,
		notifier:        notifier,
	}
}

type logMealRequest struct {
	MealID        *int64  `json:"meal_id"`
	MealName      string  `json:"meal_name"`
	Category      string  `json:"category"`
	Servings      float64 `json:"servings"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

type logWaterRequest struct {
	AmountML int `json:"amount_ml"`
}

type logWeightRequest struct {
	WeightKG float64 `json:"weight_kg"`
}

// targetsFor snapshots the profile's current daily goal so a lazily created
// record carries the targets in force on that day.
func (h *ProgressHandler) targetsFor(ctx context.Context, userID int64) (models.NutritionTargets, error) {
	profile, err := h.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return models.NutritionTargets{}, err
	}
	return models.NutritionTargets{
		Calories:      float64(profile.DailyCalorieTarget),
		Protein:       float64(profile.Macros.Protein),
		Carbohydrates: float64(profile.Macros.Carbs),
		Fats:          float64(profile.Macros.Fats),
	}, nil
}

func (h *ProgressHandler) GetToday(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	targets, err := h.targetsFor(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile targets")
	}

	progress, err := h.progressService.Today(c.Context(), userID, targets)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch today's progress")
	}

	return respondData(c, fiber.Map{"progress": progress})
}

// LogMeal records a consumed meal. A meal_id snapshots name and per-serving
// nutrients from the catalog; without one the request must carry them.
func (h *ProgressHandler) LogMeal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req logMealRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Servings <= 0 {
		req.Servings = 1
	}
	if req.Servings < 0.1 {
		return respondError(c, fiber.StatusBadRequest, "servings must be at least 0.1")
	}

	entry := models.MealLog{
		MealID:        req.MealID,
		MealName:      strings.TrimSpace(req.MealName),
		Category:      strings.TrimSpace(req.Category),
		Servings:      req.Servings,
		Calories:      req.Calories,
		Protein:       req.Protein,
		Carbohydrates: req.Carbohydrates,
		Fats:          req.Fats,
	}

	if req.MealID != nil {
		meal, err := h.mealRepo.GetByID(c.Context(), *req.MealID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return respondError(c, fiber.StatusNotFound, "Meal not found")
			}
			return respondError(c, fiber.StatusInternalServerError, "Failed to fetch meal")
		}
		entry.MealName = meal.Name
		entry.Category = meal.Category
		entry.Calories = meal.Nutrition.Calories
		entry.Protein = meal.Nutrition.Protein
		entry.Carbohydrates = meal.Nutrition.Carbohydrates
		entry.Fats = meal.Nutrition.Fats
	}

	if entry.MealName == "" {
		return respondError(c, fiber.StatusBadRequest, "meal_name is required")
	}
	if entry.Calories < 0 || entry.Protein < 0 || entry.Carbohydrates < 0 || entry.Fats < 0 {
		return respondError(c, fiber.StatusBadRequest, "nutrient values must not be negative")
	}

	targets, err := h.targetsFor(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile targets")
	}

	progress, err := h.progressService.LogMeal(c.Context(), userID, targets, entry)
	if err != nil {
		if errors.Is(err, services.ErrFutureDate) {
			return respondError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to log meal")
	}

	h.notifier.NotifyProgress(userID, "meal_logged", progress)
	return respondMessage(c, fiber.StatusCreated, "Meal logged", fiber.Map{"progress": progress})
}

func (h *ProgressHandler) RemoveMeal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	logID, err := strconv.ParseInt(c.Params("logId"), 10, 64)
	if err != nil || logID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid meal log id")
	}

	targets, err := h.targetsFor(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile targets")
	}

	progress, err := h.progressService.RemoveMeal(c.Context(), userID, targets, logID)
	if err != nil {
		if errors.Is(err, services.ErrMealLogNotFound) {
			return respondError(c, fiber.StatusNotFound, "Meal not found in today's log")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to remove meal")
	}

	h.notifier.NotifyProgress(userID, "meal_removed", progress)
	return respondData(c, fiber.Map{"progress": progress})
}

func (h *ProgressHandler) LogWater(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req logWaterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.AmountML <= 0 {
		return respondError(c, fiber.StatusBadRequest, "amount_ml must be greater than 0")
	}

	targets, err := h.targetsFor(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile targets")
	}

	total, err := h.progressService.LogWater(c.Context(), userID, targets, req.AmountML)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to log water")
	}

	h.notifier.NotifyProgress(userID, "water_logged", fiber.Map{"water_intake_ml": total})
	return respondData(c, fiber.Map{"water_intake_ml": total})
}

// UpdateWeight records today's weight and moves the profile's current
// weight along with it.
func (h *ProgressHandler) UpdateWeight(c *fiber.Ctx) error {
	return h.logWeight(c, true)
}

// LogWeight records a weight observation without touching the profile.
func (h *ProgressHandler) LogWeight(c *fiber.Ctx) error {
	return h.logWeight(c, false)
}

func (h *ProgressHandler) logWeight(c *fiber.Ctx, updateProfile bool) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req logWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.WeightKG < 20 {
		return respondError(c, fiber.StatusBadRequest, "weight_kg must be at least 20")
	}

	targets, err := h.targetsFor(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile targets")
	}

	progress, err := h.progressService.LogWeight(c.Context(), userID, targets, req.WeightKG)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to log weight")
	}

	if updateProfile {
		if err := h.profileRepo.UpdateWeight(c.Context(), userID, req.WeightKG); err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to update profile weight")
		}
	}

	h.notifier.NotifyProgress(userID, "weight_logged", progress)
	return respondData(c, fiber.Map{"progress": progress})
}

func (h *ProgressHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	now := time.Now()
	from := now.AddDate(0, 0, -lookbackDaysQuery(c, 30))
	to := now

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "from must be formatted YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "to must be formatted YYYY-MM-DD")
		}
		to = parsed
	}
	if to.Before(from) {
		return respondError(c, fiber.StatusBadRequest, "to must not be before from")
	}

	days, summary, err := h.progressService.History(c.Context(), userID, from, to)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch history")
	}

	return respondData(c, fiber.Map{
		"days":    days,
		"summary": summary,
	})
}

func (h *ProgressHandler) GetAnalytics(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	analytics, err := h.progressService.Analytics(c.Context(), userID, lookbackDaysQuery(c, 30))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to compute analytics")
	}

	return respondData(c, fiber.Map{"analytics": analytics})
}

func (h *ProgressHandler) GetWeeklySummary(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	days, summary, err := h.progressService.WeeklySummary(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to compute weekly summary")
	}

	return respondData(c, fiber.Map{
		"days":    days,
		"summary": summary,
	})
}

func (h *ProgressHandler) GetWeightHistory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	entries, err := h.progressService.WeightHistory(c.Context(), userID, lookbackDaysQuery(c, 90))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch weight history")
	}

	return respondData(c, fiber.Map{"weights": entries})
}

func lookbackDaysQuery(c *fiber.Ctx, fallback int) int {
	days := c.QueryInt("days", fallback)
	if days < 1 {
		return fallback
	}
	if days > 365 {
		return 365
	}
	return days
}
