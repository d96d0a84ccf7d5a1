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

const maxBulkMeals = 100

type adminUserStore interface {
	List(ctx context.Context, filter repository.UserListFilter) ([]models.User, int, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateAdminFields(ctx context.Context, id int64, update repository.AdminUserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (repository.UserStats, error)
	RegistrationsSince(ctx context.Context, since time.Time) ([]repository.RegistrationCount, error)
}

type adminMealStore interface {
	Create(ctx context.Context, meal *models.Meal) error
	GetByID(ctx context.Context, id int64) (*models.Meal, error)
	Update(ctx context.Context, meal *models.Meal) error
	SoftDelete(ctx context.Context, id int64) error
	BulkCreate(ctx context.Context, meals []models.Meal) (int, error)
	CountActive(ctx context.Context) (int, error)
}

type adminProfileStore interface {
	GoalDistribution(ctx context.Context) ([]repository.GoalCount, error)
}

type adminProgressStore interface {
	ActivitySince(ctx context.Context, since time.Time) ([]repository.DayActivity, error)
	StatsForDate(ctx context.Context, date time.Time) (repository.TodayStats, error)
}

type AdminHandler struct {
	userRepo     adminUserStore
	mealRepo     adminMealStore
	profileRepo  adminProfileStore
	progressRepo adminProgressStore
}

func NewAdminHandler(
	userRepo adminUserStore,
	mealRepo adminMealStore,
	profileRepo adminProfileStore,
	progressRepo adminProgressStore,
) *AdminHandler {
	return &AdminHandler{
		userRepo:     userRepo,
		mealRepo:     mealRepo,
		profileRepo:  profileRepo,
		progressRepo: progressRepo,
	}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := parsePageParams(c)

	users, total, err := h.userRepo.List(c.Context(), repository.UserListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Role:   strings.TrimSpace(c.Query("role")),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to list users")
	}

	return respondData(c, fiber.Map{
		"users":      users,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	return respondData(c, fiber.Map{"user": user})
}

type adminUserUpdateRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req adminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Role == nil && req.IsActive == nil {
		return respondError(c, fiber.StatusBadRequest, "Nothing to update")
	}
	if req.Role != nil && *req.Role != "user" && *req.Role != "admin" {
		return respondError(c, fiber.StatusBadRequest, "role must be user or admin")
	}
	if userID == actorID {
		if req.Role != nil && *req.Role != "admin" {
			return respondError(c, fiber.StatusBadRequest, "Admins cannot demote themselves")
		}
		if req.IsActive != nil && !*req.IsActive {
			return respondError(c, fiber.StatusBadRequest, "Admins cannot deactivate themselves")
		}
	}

	user, err := h.userRepo.UpdateAdminFields(c.Context(), userID, repository.AdminUserUpdate{
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update user")
	}

	return respondMessage(c, fiber.StatusOK, "User updated", fiber.Map{"user": user})
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if userID == actorID {
		return respondError(c, fiber.StatusBadRequest, "Admins cannot delete their own account")
	}

	if err := h.userRepo.Delete(c.Context(), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	return respondMessage(c, fiber.StatusOK, "User deleted", nil)
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	userStats, err := h.userRepo.Stats(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch user stats")
	}

	activeMeals, err := h.mealRepo.CountActive(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to count meals")
	}

	todayStats, err := h.progressRepo.StatsForDate(c.Context(), services.MidnightOf(time.Now()))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch today's stats")
	}

	return respondData(c, fiber.Map{
		"users": fiber.Map{
			"total":  userStats.TotalUsers,
			"active": userStats.ActiveUsers,
			"admins": userStats.AdminUsers,
		},
		"meals": fiber.Map{
			"active": activeMeals,
		},
		"today": fiber.Map{
			"tracked_users": todayStats.TrackedUsers,
			"avg_calories":  todayStats.AvgCalories,
		},
	})
}

func (h *AdminHandler) GetSystemAnalytics(c *fiber.Ctx) error {
	since := services.MidnightOf(time.Now()).AddDate(0, 0, -lookbackDaysQuery(c, 30))

	registrations, err := h.userRepo.RegistrationsSince(c.Context(), since)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch registrations")
	}

	goals, err := h.profileRepo.GoalDistribution(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch goal distribution")
	}

	activity, err := h.progressRepo.ActivitySince(c.Context(), since)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch activity")
	}

	registrationSeries := make([]fiber.Map, 0, len(registrations))
	for _, entry := range registrations {
		registrationSeries = append(registrationSeries, fiber.Map{
			"date":  entry.Date.Format("2006-01-02"),
			"count": entry.Count,
		})
	}

	goalSeries := make([]fiber.Map, 0, len(goals))
	for _, entry := range goals {
		goalSeries = append(goalSeries, fiber.Map{
			"fitness_goal": entry.FitnessGoal,
			"count":        entry.Count,
		})
	}

	return respondData(c, fiber.Map{
		"registrations":     registrationSeries,
		"goal_distribution": goalSeries,
		"activity":          activity,
	})
}

type mealRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Cuisine     string               `json:"cuisine"`
	Nutrition   models.MealNutrition `json:"nutrition"`
	ServingSize string               `json:"serving_size"`
	DietaryTags []string             `json:"dietary_tags"`
	Allergens   []string             `json:"allergens"`
	ImageURL    string               `json:"image_url"`
	PrepTimeMin *int                 `json:"prep_time_min"`
	CookTimeMin *int                 `json:"cook_time_min"`
	Popularity  float64              `json:"popularity"`
	Rating      float64              `json:"rating"`
}

func validateMealRequest(req mealRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	category := strings.TrimSpace(req.Category)
	valid := false
	for _, allowed := range models.MealCategories {
		if category == allowed {
			valid = true
			break
		}
	}
	if !valid {
		return "category must be one of: " + strings.Join(models.MealCategories, ", ")
	}
	nutrients := []float64{
		req.Nutrition.Calories, req.Nutrition.Protein, req.Nutrition.Carbohydrates,
		req.Nutrition.Fats, req.Nutrition.Fiber, req.Nutrition.Sugar, req.Nutrition.Sodium,
	}
	for _, value := range nutrients {
		if value < 0 {
			return "nutrient values must not be negative"
		}
	}
	if req.Rating < 0 || req.Rating > 5 {
		return "rating must be between 0 and 5"
	}
	return ""
}

func mealFromRequest(req mealRequest) models.Meal {
	meal := models.Meal{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Cuisine:     req.Cuisine,
		Nutrition:   req.Nutrition,
		ServingSize: req.ServingSize,
		DietaryTags: req.DietaryTags,
		Allergens:   req.Allergens,
		ImageURL:    req.ImageURL,
		PrepTimeMin: req.PrepTimeMin,
		CookTimeMin: req.CookTimeMin,
		Popularity:  req.Popularity,
		Rating:      req.Rating,
	}
	if meal.DietaryTags == nil {
		meal.DietaryTags = []string{}
	}
	if meal.Allergens == nil {
		meal.Allergens = []string{}
	}
	return meal
}

func (h *AdminHandler) CreateMeal(c *fiber.Ctx) error {
	var req mealRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if validationErr := validateMealRequest(req); validationErr != "" {
		return respondError(c, fiber.StatusBadRequest, validationErr)
	}

	meal := mealFromRequest(req)
	if err := h.mealRepo.Create(c.Context(), &meal); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create meal")
	}

	return respondMessage(c, fiber.StatusCreated, "Meal created", fiber.Map{"meal": meal})
}

func (h *AdminHandler) UpdateMeal(c *fiber.Ctx) error {
	mealID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || mealID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid meal id")
	}

	var req mealRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if validationErr := validateMealRequest(req); validationErr != "" {
		return respondError(c, fiber.StatusBadRequest, validationErr)
	}

	existing, err := h.mealRepo.GetByID(c.Context(), mealID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Meal not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch meal")
	}

	meal := mealFromRequest(req)
	meal.ID = existing.ID
	meal.IsActive = existing.IsActive
	if err := h.mealRepo.Update(c.Context(), &meal); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update meal")
	}

	return respondMessage(c, fiber.StatusOK, "Meal updated", fiber.Map{"meal": meal})
}

// DeleteMeal deactivates the catalog entry. Existing meal logs keep their
// snapshotted nutrients, so nothing is physically removed.
func (h *AdminHandler) DeleteMeal(c *fiber.Ctx) error {
	mealID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || mealID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid meal id")
	}

	if err := h.mealRepo.SoftDelete(c.Context(), mealID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusNotFound, "Meal not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete meal")
	}

	return respondMessage(c, fiber.StatusOK, "Meal deactivated", nil)
}

func (h *AdminHandler) BulkCreateMeals(c *fiber.Ctx) error {
	var reqs []mealRequest
	if err := c.BodyParser(&reqs); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(reqs) == 0 {
		return respondError(c, fiber.StatusBadRequest, "At least one meal is required")
	}
	if len(reqs) > maxBulkMeals {
		return respondError(c, fiber.StatusBadRequest, "Too many meals in one request")
	}

	meals := make([]models.Meal, 0, len(reqs))
	for i, req := range reqs {
		if validationErr := validateMealRequest(req); validationErr != "" {
			return respondError(c, fiber.StatusBadRequest,
				"meal "+strconv.Itoa(i)+": "+validationErr)
		}
		meals = append(meals, mealFromRequest(req))
	}

	created, err := h.mealRepo.BulkCreate(c.Context(), meals)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create meals")
	}

	return respondMessage(c, fiber.StatusCreated, "Meals created", fiber.Map{"created": created})
}
