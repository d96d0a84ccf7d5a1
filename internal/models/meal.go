package models

import "time"

// MealNutrition holds per-serving nutrient values.
type MealNutrition struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
}

type Meal struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Cuisine     string        `json:"cuisine"`
	Nutrition   MealNutrition `json:"nutrition"`
	ServingSize string        `json:"serving_size"`
	DietaryTags []string      `json:"dietary_tags"`
	Allergens   []string      `json:"allergens"`
	ImageURL    string        `json:"image_url"`
	PrepTimeMin *int          `json:"prep_time_min"`
	CookTimeMin *int          `json:"cook_time_min"`
	Popularity  float64       `json:"popularity"`
	Rating      float64       `json:"rating"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

var MealCategories = []string{"breakfast", "lunch", "dinner", "snack", "beverage", "dessert"}

type CategorySummary struct {
	Category    string  `json:"category"`
	Count       int     `json:"count"`
	AvgCalories float64 `json:"avg_calories"`
}

// MealPlanItem is one candidate meal inside a generated day plan.
type MealPlanItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	ImageURL string  `json:"image_url"`
}

type MealPlan struct {
	Date          time.Time                 `json:"date"`
	Slots         map[string][]MealPlanItem `json:"meal_plan"`
	TotalCalories int                       `json:"total_calories"`
	MacroTargets  Macros                    `json:"macro_targets"`
}
