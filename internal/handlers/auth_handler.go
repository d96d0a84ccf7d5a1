package handlers

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
	"github.com/rumi097/Nutriguide/pkg/utils"
)

type AuthHandler struct {
	db               *pgxpool.Pool
	userRepo         *repository.UserRepository
	profileRepo      *repository.UserProfileRepository
	nutritionService *services.NutritionService
	jwtSecret        string
}

func NewAuthHandler(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	profileRepo *repository.UserProfileRepository,
	nutritionService *services.NutritionService,
	jwtSecret string,
) *AuthHandler {
	return &AuthHandler{
		db:               db,
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		nutritionService: nutritionService,
		jwtSecret:        jwtSecret,
	}
}

type registerRequest struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	Age                int      `json:"age"`
	Gender             string   `json:"gender"`
	HeightCM           float64  `json:"height_cm"`
	WeightKG           float64  `json:"weight_kg"`
	TargetWeightKG     *float64 `json:"target_weight_kg"`
	ActivityLevel      string   `json:"activity_level"`
	FitnessGoal        string   `json:"fitness_goal"`
	DietaryPreferences []string `json:"dietary_preferences"`
	Allergies          []string `json:"allergies"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the account and its profile in one transaction. Daily
// targets come from the ML service when it is reachable, the local
// calculator otherwise; registration never fails because of the ML side.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid email format")
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	if validationErr := validateRegisterRequest(req); validationErr != "" {
		return respondError(c, fiber.StatusBadRequest, validationErr)
	}

	existing, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err == nil && existing != nil {
		return respondError(c, fiber.StatusConflict, "Email already registered")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return respondError(c, fiber.StatusInternalServerError, "Failed to check email")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	result, _ := h.nutritionService.PredictOrFallback(c.Context(), services.ProfileInput{
		Age:           req.Age,
		Gender:        req.Gender,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: req.ActivityLevel,
		FitnessGoal:   req.FitnessGoal,
	})

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(req.Name),
		Role:         "user",
	}

	profile := models.NewUserProfile(0)
	profile.Age = req.Age
	profile.Gender = req.Gender
	profile.HeightCM = req.HeightCM
	profile.WeightKG = req.WeightKG
	profile.InitialWeightKG = &req.WeightKG
	profile.TargetWeightKG = req.TargetWeightKG
	profile.ActivityLevel = req.ActivityLevel
	profile.FitnessGoal = req.FitnessGoal
	if len(req.DietaryPreferences) > 0 {
		profile.DietaryPreferences = req.DietaryPreferences
	}
	if req.Allergies != nil {
		profile.Allergies = req.Allergies
	}
	profile.BMI = result.BMI
	profile.DailyCalorieTarget = result.DailyCalories
	profile.Macros = result.Macros
	profile.ProfileComplete = true

	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to start registration transaction")
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	txUserRepo := repository.NewUserRepository(tx)
	txProfileRepo := repository.NewUserProfileRepository(tx)

	if err := txUserRepo.CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return respondError(c, fiber.StatusConflict, "Email already registered")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	profile.UserID = user.ID
	if err := txProfileRepo.Create(c.Context(), profile); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create user profile")
	}

	if err := tx.Commit(c.Context()); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to finalize registration")
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), user.Role, h.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return respondMessage(c, fiber.StatusCreated, "Registration successful", fiber.Map{
		"token":   token,
		"user":    user,
		"profile": profile,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid email format")
	}
	req.Email = strings.ToLower(parsedEmail.Address)

	user, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to lookup user")
	}

	if !user.IsActive {
		return respondError(c, fiber.StatusForbidden, "Account is deactivated")
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return respondError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	if err := h.userRepo.TouchLastLogin(c.Context(), user.ID); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to record login")
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), user.Role, h.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return respondData(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
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
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return respondData(c, fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

// Logout is a client-side concern with stateless JWTs; the endpoint exists
// so clients have a uniform call to clear their session against.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return respondMessage(c, fiber.StatusOK, "Logged out", nil)
}
