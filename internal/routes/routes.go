package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rumi097/Nutriguide/internal/config"
	"github.com/rumi097/Nutriguide/internal/handlers"
	"github.com/rumi097/Nutriguide/internal/middleware"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
	progressws "github.com/rumi097/Nutriguide/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, progressHub *progressws.Hub) error {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)
	mealRepo := repository.NewMealRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	var mlPredictor services.MLPredictor
	if cfg.MLServiceURL != "" {
		mlPredictor = services.NewHTTPMLService(cfg.MLServiceURL, cfg.MLTimeout)
	}
	nutritionService := services.NewNutritionService(mlPredictor)
	mealPlanService := services.NewMealPlanService(mealRepo)
	progressService := services.NewProgressService(db, progressRepo)

	authHandler := handlers.NewAuthHandler(db, userRepo, profileRepo, nutritionService, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo, nutritionService)
	mealHandler := handlers.NewMealHandler(mealRepo, profileRepo, mealPlanService)
	nutritionHandler := handlers.NewNutritionHandler(profileRepo, nutritionService, mealPlanService)
	progressHandler := handlers.NewProgressHandler(progressService, profileRepo, mealRepo, progressHub)
	adminHandler := handlers.NewAdminHandler(userRepo, mealRepo, profileRepo, progressRepo)
	wsHandler := handlers.NewWSHandler(progressHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)
	auth.Post("/logout", middleware.AuthRequired(cfg.JWTSecret), authHandler.Logout)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("/profile", profileHandler.GetProfile)
	users.Put("/profile", profileHandler.UpdateProfile)
	users.Get("/dashboard", profileHandler.GetDashboard)
	users.Delete("/account", profileHandler.DeleteAccount)

	meals := authProtected.Group("/meals")
	meals.Get("", mealHandler.ListMeals)
	meals.Get("/recommendations", mealHandler.GetRecommendations)
	meals.Get("/categories/summary", mealHandler.GetCategorySummary)
	meals.Get("/:id", mealHandler.GetMeal)

	nutrition := authProtected.Group("/nutrition")
	nutrition.Get("/recommendations", nutritionHandler.GetRecommendations)
	nutrition.Get("/calculate", nutritionHandler.Calculate)
	nutrition.Post("/meal-plan", nutritionHandler.GenerateMealPlan)

	progress := authProtected.Group("/progress")
	progress.Get("/today", progressHandler.GetToday)
	progress.Post("/log-meal", progressHandler.LogMeal)
	progress.Delete("/meals/:logId", progressHandler.RemoveMeal)
	progress.Put("/update-weight", progressHandler.UpdateWeight)
	progress.Post("/log-weight", progressHandler.LogWeight)
	progress.Post("/log-water", progressHandler.LogWater)
	progress.Get("/history", progressHandler.GetHistory)
	progress.Get("/analytics", progressHandler.GetAnalytics)
	progress.Get("/weekly-summary", progressHandler.GetWeeklySummary)
	progress.Get("/weight-history", progressHandler.GetWeightHistory)

	admin := authProtected.Group("/admin", middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/analytics", adminHandler.GetSystemAnalytics)
	admin.Post("/meals", adminHandler.CreateMeal)
	admin.Put("/meals/:id", adminHandler.UpdateMeal)
	admin.Delete("/meals/:id", adminHandler.DeleteMeal)
	admin.Post("/meals/bulk", adminHandler.BulkCreateMeals)

	api.Use("/v1/ws", wsHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(wsHandler.HandleWebSocket))

	return registerDocsRoutes(app, cfg)
}
