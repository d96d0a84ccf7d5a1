package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
)

type stubProgressService struct {
	progress    *models.DailyProgress
	waterTotal  int
	err         error
	lastUserID  int64
	lastTargets models.NutritionTargets
	lastEntry   models.MealLog
	lastLogID   int64
}

func (s *stubProgressService) Today(_ context.Context, userID int64, targets models.NutritionTargets) (*models.DailyProgress, error) {
	s.lastUserID = userID
	s.lastTargets = targets
	return s.progress, s.err
}

func (s *stubProgressService) LogMeal(_ context.Context, userID int64, targets models.NutritionTargets, entry models.MealLog) (*models.DailyProgress, error) {
	s.lastUserID = userID
	s.lastTargets = targets
	s.lastEntry = entry
	return s.progress, s.err
}

func (s *stubProgressService) RemoveMeal(_ context.Context, userID int64, targets models.NutritionTargets, logID int64) (*models.DailyProgress, error) {
	s.lastUserID = userID
	s.lastTargets = targets
	s.lastLogID = logID
	return s.progress, s.err
}

func (s *stubProgressService) LogWater(_ context.Context, userID int64, _ models.NutritionTargets, amountML int) (int, error) {
	s.lastUserID = userID
	s.waterTotal += amountML
	return s.waterTotal, s.err
}

func (s *stubProgressService) LogWeight(_ context.Context, userID int64, _ models.NutritionTargets, _ float64) (*models.DailyProgress, error) {
	s.lastUserID = userID
	return s.progress, s.err
}

func (s *stubProgressService) History(_ context.Context, userID int64, _, _ time.Time) ([]models.DailyProgress, models.ProgressSummary, error) {
	s.lastUserID = userID
	return nil, models.ProgressSummary{}, s.err
}

func (s *stubProgressService) Analytics(_ context.Context, userID int64, _ int) (models.ProgressAnalytics, error) {
	s.lastUserID = userID
	return models.ProgressAnalytics{}, s.err
}

func (s *stubProgressService) WeeklySummary(_ context.Context, userID int64) ([]models.DailyProgress, models.WeeklySummary, error) {
	s.lastUserID = userID
	return nil, models.WeeklySummary{}, s.err
}

func (s *stubProgressService) WeightHistory(_ context.Context, userID int64, _ int) ([]repository.WeightEntry, error) {
	s.lastUserID = userID
	return nil, s.err
}

type stubWeightProfileStore struct {
	profile       *models.UserProfile
	err           error
	updatedWeight float64
}

func (s *stubWeightProfileStore) GetByUserID(_ context.Context, _ int64) (*models.UserProfile, error) {
	return s.profile, s.err
}

func (s *stubWeightProfileStore) UpdateWeight(_ context.Context, _ int64, weightKG float64) error {
	s.updatedWeight = weightKG
	return s.err
}

type stubNotifier struct {
	events []string
}

func (s *stubNotifier) NotifyProgress(_ int64, eventType string, _ any) {
	s.events = append(s.events, eventType)
}

func newProgressHandlerForTest(service *stubProgressService, meal *models.Meal) (*ProgressHandler, *stubNotifier, *stubWeightProfileStore) {
	notifier := &stubNotifier{}
	profiles := &stubWeightProfileStore{profile: testProfile()}
	return NewProgressHandler(service, profiles, &stubMealStore{meal: meal}, notifier), notifier, profiles
}

func sampleProgress() *models.DailyProgress {
	return &models.DailyProgress{
		ID:     7,
		UserID: 1,
		Date:   services.MidnightOf(time.Now()),
		Targets: models.NutritionTargets{
			Calories: 2259, Protein: 169, Carbohydrates: 226, Fats: 75,
		},
	}
}

func TestLogMealSnapshotsCatalogMeal(t *testing.T) {
	service := &stubProgressService{progress: sampleProgress()}
	meal := &models.Meal{
		ID: 12, Name: "Salmon Teriyaki", Category: "dinner", IsActive: true,
		Nutrition: models.MealNutrition{Calories: 620, Protein: 42, Carbohydrates: 55, Fats: 22},
	}
	handler, notifier, _ := newProgressHandlerForTest(service, meal)

	app := authedApp()
	app.Post("/api/v1/progress/log-meal", handler.LogMeal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/log-meal",
		bytes.NewReader([]byte(`{"meal_id":12,"servings":1.5}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 1 {
		t.Fatalf("expected user 1, got %d", service.lastUserID)
	}
	if service.lastEntry.MealName != "Salmon Teriyaki" || service.lastEntry.Category != "dinner" {
		t.Fatalf("expected catalog snapshot, got %+v", service.lastEntry)
	}
	if service.lastEntry.Calories != 620 || service.lastEntry.Servings != 1.5 {
		t.Fatalf("unexpected entry values: %+v", service.lastEntry)
	}
	if service.lastTargets.Calories != 2259 {
		t.Fatalf("expected profile targets forwarded, got %+v", service.lastTargets)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "meal_logged" {
		t.Fatalf("expected one meal_logged event, got %v", notifier.events)
	}
}

func TestLogMealRequiresNameWithoutCatalogID(t *testing.T) {
	service := &stubProgressService{progress: sampleProgress()}
	handler, _, _ := newProgressHandlerForTest(service, nil)

	app := authedApp()
	app.Post("/api/v1/progress/log-meal", handler.LogMeal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/log-meal",
		bytes.NewReader([]byte(`{"calories":300}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRemoveMealNotFound(t *testing.T) {
	service := &stubProgressService{err: services.ErrMealLogNotFound}
	handler, notifier, _ := newProgressHandlerForTest(service, nil)

	app := authedApp()
	app.Delete("/api/v1/progress/meals/:logId", handler.RemoveMeal)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/progress/meals/42", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastLogID != 42 {
		t.Fatalf("expected log id 42 forwarded, got %d", service.lastLogID)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no events on failure, got %v", notifier.events)
	}
}

func TestLogWaterRejectsNonPositiveAmount(t *testing.T) {
	service := &stubProgressService{progress: sampleProgress()}
	handler, _, _ := newProgressHandlerForTest(service, nil)

	app := authedApp()
	app.Post("/api/v1/progress/log-water", handler.LogWater)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress/log-water",
		bytes.NewReader([]byte(`{"amount_ml":0}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateWeightAlsoMovesProfileWeight(t *testing.T) {
	service := &stubProgressService{progress: sampleProgress()}
	handler, notifier, profiles := newProgressHandlerForTest(service, nil)

	app := authedApp()
	app.Put("/api/v1/progress/update-weight", handler.UpdateWeight)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress/update-weight",
		bytes.NewReader([]byte(`{"weight_kg":78.6}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if profiles.updatedWeight != 78.6 {
		t.Fatalf("expected profile weight updated to 78.6, got %v", profiles.updatedWeight)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "weight_logged" {
		t.Fatalf("expected weight_logged event, got %v", notifier.events)
	}
}

func TestHistoryRejectsInvertedRange(t *testing.T) {
	service := &stubProgressService{}
	handler, _, _ := newProgressHandlerForTest(service, nil)

	app := authedApp()
	app.Get("/api/v1/progress/history", handler.GetHistory)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/progress/history?from=2026-08-10&to=2026-08-01", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
