package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

var integrationTargets = models.NutritionTargets{
	Calories: 2000, Protein: 150, Carbohydrates: 200, Fats: 67,
}

func TestProgressServiceRejectsFutureDate(t *testing.T) {
	service := NewProgressService(nil, nil)
	tomorrow := time.Now().AddDate(0, 0, 1)
	if _, err := service.GetOrCreateDay(context.Background(), 1, tomorrow, integrationTargets); err != ErrFutureDate {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
}

func TestProgressServiceLogAndRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewProgressService(pool, repository.NewProgressRepository(pool))

	userID := createTestAccount(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	progress, err := service.LogMeal(ctx, userID, integrationTargets, models.MealLog{
		MealName: "Grilled Chicken Salad",
		Category: "lunch",
		Servings: 2,
		Calories: 350, Protein: 30, Carbohydrates: 15, Fats: 18,
	})
	if err != nil {
		t.Fatalf("LogMeal: %v", err)
	}

	if progress.Nutrition.Calories != 700 || progress.Nutrition.Protein != 60 {
		t.Fatalf("expected servings-scaled totals, got %+v", progress.Nutrition)
	}
	if len(progress.Meals) != 1 {
		t.Fatalf("expected one logged meal, got %d", len(progress.Meals))
	}
	if progress.Compliance.CalorieCompliance <= 0 {
		t.Fatalf("expected compliance to be recomputed, got %+v", progress.Compliance)
	}

	removed, err := service.RemoveMeal(ctx, userID, integrationTargets, progress.Meals[0].ID)
	if err != nil {
		t.Fatalf("RemoveMeal: %v", err)
	}

	if removed.Nutrition.Calories != 0 || removed.Nutrition.Protein != 0 {
		t.Fatalf("expected totals restored to zero, got %+v", removed.Nutrition)
	}
	if len(removed.Meals) != 0 {
		t.Fatalf("expected no remaining meals, got %d", len(removed.Meals))
	}

	if _, err := service.RemoveMeal(ctx, userID, integrationTargets, progress.Meals[0].ID); err != ErrMealLogNotFound {
		t.Fatalf("expected ErrMealLogNotFound for double removal, got %v", err)
	}
}

func TestProgressServiceConcurrentMealLogs(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewProgressService(pool, repository.NewProgressRepository(pool))

	userID := createTestAccount(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.LogMeal(ctx, userID, integrationTargets, models.MealLog{
				MealName: fmt.Sprintf("Concurrent Meal %d", i),
				Category: "snack",
				Servings: 1,
				Calories: 200, Protein: 10, Carbohydrates: 20, Fats: 8,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("LogMeal goroutine %d: %v", i, err)
		}
	}

	progress, err := service.Today(ctx, userID, integrationTargets)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if progress.Nutrition.Calories != 400 {
		t.Fatalf("expected both concurrent logs to land, got %.0f calories", progress.Nutrition.Calories)
	}
	if len(progress.Meals) != 2 {
		t.Fatalf("expected two logged meals, got %d", len(progress.Meals))
	}
}

func TestProgressServiceWaterAndWeight(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewProgressService(pool, repository.NewProgressRepository(pool))

	userID := createTestAccount(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	total, err := service.LogWater(ctx, userID, integrationTargets, 250)
	if err != nil {
		t.Fatalf("LogWater: %v", err)
	}
	total, err = service.LogWater(ctx, userID, integrationTargets, 500)
	if err != nil {
		t.Fatalf("LogWater: %v", err)
	}
	if total != 750 {
		t.Fatalf("expected water total 750, got %d", total)
	}

	progress, err := service.LogWeight(ctx, userID, integrationTargets, 79.4)
	if err != nil {
		t.Fatalf("LogWeight: %v", err)
	}
	if progress.Weight == nil || *progress.Weight != 79.4 {
		t.Fatalf("expected weight 79.4 on today's record, got %+v", progress.Weight)
	}

	entries, err := service.WeightHistory(ctx, userID, 7)
	if err != nil {
		t.Fatalf("WeightHistory: %v", err)
	}
	if len(entries) != 1 || entries[0].Weight != 79.4 {
		t.Fatalf("expected one weight entry of 79.4, got %+v", entries)
	}
}

func TestMealCatalogCandidateFilters(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := repository.NewMealRepository(pool)

	mealIDs := []int64{}
	t.Cleanup(func() {
		if len(mealIDs) == 0 {
			return
		}
		if _, err := pool.Exec(ctx, "DELETE FROM meals WHERE id = ANY($1)", mealIDs); err != nil {
			t.Fatalf("cleanup meals: %v", err)
		}
	})

	// A calorie band no seeded meal occupies, so only these two compete.
	create := func(name string, popularity float64, allergens []string) int64 {
		meal := &models.Meal{
			Name:        name,
			Category:    "lunch",
			Nutrition:   models.MealNutrition{Calories: 5123, Protein: 30, Carbohydrates: 50, Fats: 15},
			DietaryTags: []string{},
			Allergens:   allergens,
			Popularity:  popularity,
			Rating:      4.5,
		}
		if err := repo.Create(ctx, meal); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		mealIDs = append(mealIDs, meal.ID)
		return meal.ID
	}

	peanutID := create("Peanut Stir Fry", 9.5, []string{"peanuts"})
	safeID := create("Veggie Stir Fry", 1.5, []string{})

	fetched, err := repo.GetByID(ctx, peanutID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Popularity != 9.5 || fetched.Rating != 4.5 {
		t.Fatalf("expected fractional popularity/rating to round-trip, got %+v", fetched)
	}

	// Limit 1 with the more popular meal excluded by allergen: the safe
	// meal must still come back because the predicates run before the
	// limit.
	candidates, err := repo.ListCandidates(ctx, repository.CandidateFilter{
		MinCalories:      5100,
		MaxCalories:      5150,
		ExcludeAllergens: []string{"peanuts"},
		Limit:            1,
	})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != safeID {
		t.Fatalf("expected only the allergen-free meal, got %+v", candidates)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int64 {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("progress-test-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Name:         "Progress Tester",
		Role:         "user",
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user.ID
}

func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM meal_logs WHERE progress_id IN (SELECT id FROM daily_progress WHERE user_id = ANY($1))", userIDs); err != nil {
		t.Fatalf("cleanup meal logs: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM weight_logs WHERE progress_id IN (SELECT id FROM daily_progress WHERE user_id = ANY($1))", userIDs); err != nil {
		t.Fatalf("cleanup weight logs: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM daily_progress WHERE user_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup daily progress: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM user_profiles WHERE user_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup user profiles: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
