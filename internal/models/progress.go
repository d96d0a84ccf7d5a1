package models

import "time"

// NutritionTargets is a day's calorie and macro goal, snapshotted from the
// user profile when the day's record is created.
type NutritionTargets struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

// NutritionTotals accumulates what was actually eaten. It always equals the
// sum over the day's meal logs of nutrient x servings.
type NutritionTotals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

type Compliance struct {
	CalorieCompliance float64 `json:"calorie_compliance"`
	MacroCompliance   float64 `json:"macro_compliance"`
}

type MealLog struct {
	ID            int64     `json:"id"`
	ProgressID    int64     `json:"progress_id"`
	MealID        *int64    `json:"meal_id"`
	MealName      string    `json:"meal_name"`
	Category      string    `json:"category"`
	Servings      float64   `json:"servings"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbohydrates float64   `json:"carbohydrates"`
	Fats          float64   `json:"fats"`
	ConsumedAt    time.Time `json:"consumed_at"`
}

// DailyProgress is the one-per-(user, day) record. Date is midnight-aligned.
type DailyProgress struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	Date          time.Time        `json:"date"`
	Weight        *float64         `json:"weight"`
	WaterIntakeML int              `json:"water_intake_ml"`
	Targets       NutritionTargets `json:"targets"`
	Nutrition     NutritionTotals  `json:"nutrition"`
	Compliance    Compliance       `json:"compliance"`
	Meals         []MealLog        `json:"meals"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProgressSummary is the compact roll-up attached to history responses.
type ProgressSummary struct {
	TotalDays         int `json:"total_days"`
	AverageCalories   int `json:"average_calories"`
	AverageCompliance int `json:"average_compliance"`
}

// ChartSeries carries per-day aligned arrays for plotting. Every day in the
// range has an entry; Weight is null for days without a logged weight.
type ChartSeries struct {
	Dates      []string   `json:"dates"`
	Calories   []float64  `json:"calories"`
	Protein    []float64  `json:"protein"`
	Carbs      []float64  `json:"carbs"`
	Fats       []float64  `json:"fats"`
	Weight     []*float64 `json:"weight"`
	Compliance []float64  `json:"compliance"`
}

type ProgressAnalytics struct {
	AverageCalories   int         `json:"average_calories"`
	AverageProtein    int         `json:"average_protein"`
	AverageCarbs      int         `json:"average_carbs"`
	AverageFats       int         `json:"average_fats"`
	CalorieCompliance int         `json:"calorie_compliance"`
	WeightChange      float64     `json:"weight_change"`
	TotalMealsLogged  int         `json:"total_meals_logged"`
	StreakDays        int         `json:"streak_days"`
	ChartData         ChartSeries `json:"chart_data"`
}

type WeeklySummary struct {
	TotalCalories  float64 `json:"total_calories"`
	AvgCalories    int     `json:"avg_calories"`
	AvgWaterML     int     `json:"avg_water_ml"`
	DaysTracked    int     `json:"days_tracked"`
	CurrentStreak  int     `json:"current_streak"`
	TotalMeals     int     `json:"total_meals"`
	TotalProteinG  float64 `json:"total_protein_g"`
	TotalCarbsG    float64 `json:"total_carbs_g"`
	TotalFatsG     float64 `json:"total_fats_g"`
}
