package models

import "time"

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Macros is a daily macronutrient target in grams.
type Macros struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fats    int `json:"fats"`
}

type UserProfile struct {
	UserID             int64     `json:"user_id"`
	Age                int       `json:"age"`
	Gender             string    `json:"gender"`
	HeightCM           float64   `json:"height_cm"`
	WeightKG           float64   `json:"weight_kg"`
	InitialWeightKG    *float64  `json:"initial_weight_kg"`
	TargetWeightKG     *float64  `json:"target_weight_kg"`
	ActivityLevel      string    `json:"activity_level"`
	FitnessGoal        string    `json:"fitness_goal"`
	DietaryPreferences []string  `json:"dietary_preferences"`
	Allergies          []string  `json:"allergies"`
	WaterGoalML        int       `json:"water_goal_ml"`
	BMI                float64   `json:"bmi"`
	DailyCalorieTarget int       `json:"daily_calorie_target"`
	Macros             Macros    `json:"macronutrients"`
	ProfileComplete    bool      `json:"profile_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUserProfile applies the schema defaults the rest of the code relies on:
// dietary preferences are never nil (missing means "none") and the water goal
// starts at 2000ml.
func NewUserProfile(userID int64) *UserProfile {
	return &UserProfile{
		UserID:             userID,
		DietaryPreferences: []string{"none"},
		Allergies:          []string{},
		WaterGoalML:        2000,
	}
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
