package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
	"github.com/rumi097/Nutriguide/internal/services"
)

type stubMealStore struct {
	meals      []models.Meal
	total      int
	meal       *models.Meal
	summary    []models.CategorySummary
	err        error
	lastFilter repository.MealListFilter
}

func (s *stubMealStore) List(_ context.Context, filter repository.MealListFilter) ([]models.Meal, int, error) {
	s.lastFilter = filter
	return s.meals, s.total, s.err
}

func (s *stubMealStore) GetByID(_ context.Context, _ int64) (*models.Meal, error) {
	if s.meal == nil {
		return nil, pgx.ErrNoRows
	}
	return s.meal, s.err
}

func (s *stubMealStore) CategorySummary(_ context.Context) ([]models.CategorySummary, error) {
	return s.summary, s.err
}

func TestListMealsForwardsFilters(t *testing.T) {
	store := &stubMealStore{
		meals: []models.Meal{{ID: 1, Name: "Oatmeal", IsActive: true}},
		total: 1,
	}
	handler := NewMealHandler(store, &stubProfileStore{}, nil)

	app := authedApp()
	app.Get("/api/v1/meals", handler.ListMeals)

	target := "/api/v1/meals?category=breakfast&search=oat&dietary_tags=vegan,gluten_free&max_calories=500&page=2&limit=5"
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastFilter.Category != "breakfast" || store.lastFilter.Search != "oat" {
		t.Fatalf("unexpected filter: %+v", store.lastFilter)
	}
	if len(store.lastFilter.DietaryTags) != 2 || store.lastFilter.DietaryTags[0] != "vegan" {
		t.Fatalf("unexpected dietary tags: %v", store.lastFilter.DietaryTags)
	}
	if store.lastFilter.MaxCalories != 500 {
		t.Fatalf("expected max calories 500, got %v", store.lastFilter.MaxCalories)
	}
	if store.lastFilter.Offset != 5 || store.lastFilter.Limit != 5 {
		t.Fatalf("unexpected paging: offset=%d limit=%d", store.lastFilter.Offset, store.lastFilter.Limit)
	}

	var payload struct {
		Data struct {
			Pagination models.PaginationMeta `json:"pagination"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Data.Pagination.Total != 1 || payload.Data.Pagination.Page != 2 {
		t.Fatalf("unexpected pagination meta: %+v", payload.Data.Pagination)
	}
}

func TestGetMealHidesInactive(t *testing.T) {
	store := &stubMealStore{meal: &models.Meal{ID: 4, Name: "Retired Dish", IsActive: false}}
	handler := NewMealHandler(store, &stubProfileStore{}, nil)

	app := authedApp()
	app.Get("/api/v1/meals/:id", handler.GetMeal)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/meals/4", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for inactive meal, got %d", resp.StatusCode)
	}
}

func TestGetMealNotFound(t *testing.T) {
	handler := NewMealHandler(&stubMealStore{}, &stubProfileStore{}, nil)

	app := authedApp()
	app.Get("/api/v1/meals/:id", handler.GetMeal)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/meals/99", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMealRecommendationsFilterAllergens(t *testing.T) {
	catalog := &stubMealCatalog{meals: []models.Meal{
		{ID: 1, Name: "Peanut Noodles", Allergens: []string{"peanuts"}, Nutrition: models.MealNutrition{Calories: 750}, IsActive: true},
		{ID: 2, Name: "Veggie Bowl", Allergens: []string{}, Nutrition: models.MealNutrition{Calories: 760}, IsActive: true},
	}}
	profile := testProfile()
	profile.Allergies = []string{"peanuts"}

	handler := NewMealHandler(&stubMealStore{}, &stubProfileStore{profile: profile}, services.NewMealPlanService(catalog))

	app := authedApp()
	app.Get("/api/v1/meals/recommendations", handler.GetRecommendations)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/meals/recommendations", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Meals         []models.Meal `json:"meals"`
			CalorieTarget float64       `json:"calorie_target"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Data.Meals) != 1 || payload.Data.Meals[0].Name != "Veggie Bowl" {
		t.Fatalf("expected only the allergen-free meal, got %+v", payload.Data.Meals)
	}
	if payload.Data.CalorieTarget != 753 {
		t.Fatalf("expected default target 2259/3=753, got %v", payload.Data.CalorieTarget)
	}
}
