package services

import (
	"context"
	"time"

	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
)

const (
	// suitableMealLimit bounds matcher responses; callers needing fewer
	// slice further.
	suitableMealLimit = 20

	// Calorie tolerance around a slot target when generating a day plan.
	mealPlanTolerance    = 150
	mealPlanSlotPicks    = 3
	defaultMealTolerance = 100
)

// mealPlanRatios splits a day's calorie budget across meal slots.
var mealPlanRatios = map[string]float64{
	"breakfast": 0.25,
	"lunch":     0.35,
	"dinner":    0.30,
	"snack":     0.10,
}

var defaultMealSlots = []string{"breakfast", "lunch", "dinner", "snack"}

type MealCatalog interface {
	ListCandidates(ctx context.Context, filter repository.CandidateFilter) ([]models.Meal, error)
}

type MealPlanService struct {
	catalog MealCatalog
}

func NewMealPlanService(catalog MealCatalog) *MealPlanService {
	return &MealPlanService{catalog: catalog}
}

// effectivePreferences reduces a preference list to the form the catalog
// filters on. An empty list, or one containing "none", disables the
// preference predicate entirely.
func effectivePreferences(preferences []string) []string {
	if len(preferences) == 0 {
		return nil
	}
	for _, pref := range preferences {
		if pref == "none" {
			return nil
		}
	}
	return preferences
}

// FindSuitableMeals returns active meals within calorieTarget +/- tolerance
// that fit the dietary preferences and carry none of the listed allergens,
// most popular first. Both predicates are part of the catalog query so the
// result cap never hides suitable meals behind popular mismatches. No match
// yields an empty slice.
func (s *MealPlanService) FindSuitableMeals(
	ctx context.Context,
	preferences []string,
	allergies []string,
	calorieTarget float64,
	tolerance float64,
) ([]models.Meal, error) {
	if tolerance <= 0 {
		tolerance = defaultMealTolerance
	}

	return s.catalog.ListCandidates(ctx, repository.CandidateFilter{
		MinCalories:        calorieTarget - tolerance,
		MaxCalories:        calorieTarget + tolerance,
		DietaryPreferences: effectivePreferences(preferences),
		ExcludeAllergens:   allergies,
		Limit:              suitableMealLimit,
	})
}

// GenerateMealPlan distributes the profile's daily calorie target across the
// requested meal slots (breakfast 25%, lunch 35%, dinner 30%, snack 10%) and
// picks up to three suitable candidates per slot.
func (s *MealPlanService) GenerateMealPlan(
	ctx context.Context,
	profile *models.UserProfile,
	date time.Time,
	mealTypes []string,
) (*models.MealPlan, error) {
	if len(mealTypes) == 0 {
		mealTypes = defaultMealSlots
	}
	dailyCalories := float64(profile.DailyCalorieTarget)

	plan := &models.MealPlan{
		Date:          date,
		Slots:         make(map[string][]models.MealPlanItem, len(mealTypes)),
		TotalCalories: profile.DailyCalorieTarget,
		MacroTargets:  profile.Macros,
	}

	for _, mealType := range mealTypes {
		ratio, ok := mealPlanRatios[mealType]
		if !ok {
			continue
		}
		slotTarget := dailyCalories * ratio

		meals, err := s.FindSuitableMeals(ctx, profile.DietaryPreferences, profile.Allergies, slotTarget, mealPlanTolerance)
		if err != nil {
			return nil, err
		}

		if len(meals) > mealPlanSlotPicks {
			meals = meals[:mealPlanSlotPicks]
		}
		items := make([]models.MealPlanItem, 0, len(meals))
		for _, meal := range meals {
			items = append(items, models.MealPlanItem{
				ID:       meal.ID,
				Name:     meal.Name,
				Category: meal.Category,
				Calories: meal.Nutrition.Calories,
				Protein:  meal.Nutrition.Protein,
				Carbs:    meal.Nutrition.Carbohydrates,
				Fats:     meal.Nutrition.Fats,
				ImageURL: meal.ImageURL,
			})
		}
		plan.Slots[mealType] = items
	}

	return plan, nil
}
