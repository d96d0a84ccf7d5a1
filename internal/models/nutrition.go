package models

// NutritionResult is what both the ML service and the local fallback produce.
// Field names follow the ML service wire format.
type NutritionResult struct {
	DailyCalories   int      `json:"daily_calories"`
	Macros          Macros   `json:"macronutrients"`
	BMI             float64  `json:"bmi"`
	BMR             float64  `json:"bmr"`
	Recommendations []string `json:"recommendations"`
}
