package repository

import (
	"context"

	"github.com/rumi097/Nutriguide/internal/models"
)

type UserProfileRepository struct {
	db DBTX
}

func NewUserProfileRepository(db DBTX) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

func (r *UserProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, age, gender, height_cm, weight_kg, initial_weight_kg, target_weight_kg,
			activity_level, fitness_goal, dietary_preferences, allergies, water_goal_ml,
			bmi, daily_calorie_target, protein_g, carbs_g, fats_g, profile_complete
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.Age,
		profile.Gender,
		profile.HeightCM,
		profile.WeightKG,
		profile.InitialWeightKG,
		profile.TargetWeightKG,
		profile.ActivityLevel,
		profile.FitnessGoal,
		profile.DietaryPreferences,
		profile.Allergies,
		profile.WaterGoalML,
		profile.BMI,
		profile.DailyCalorieTarget,
		profile.Macros.Protein,
		profile.Macros.Carbs,
		profile.Macros.Fats,
		profile.ProfileComplete,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *UserProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `
		SELECT user_id, age, gender, height_cm, weight_kg, initial_weight_kg, target_weight_kg,
			   activity_level, fitness_goal, dietary_preferences, allergies, water_goal_ml,
			   bmi, daily_calorie_target, protein_g, carbs_g, fats_g, profile_complete,
			   created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var profile models.UserProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Age,
		&profile.Gender,
		&profile.HeightCM,
		&profile.WeightKG,
		&profile.InitialWeightKG,
		&profile.TargetWeightKG,
		&profile.ActivityLevel,
		&profile.FitnessGoal,
		&profile.DietaryPreferences,
		&profile.Allergies,
		&profile.WaterGoalML,
		&profile.BMI,
		&profile.DailyCalorieTarget,
		&profile.Macros.Protein,
		&profile.Macros.Carbs,
		&profile.Macros.Fats,
		&profile.ProfileComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if profile.DietaryPreferences == nil {
		profile.DietaryPreferences = []string{"none"}
	}
	if profile.Allergies == nil {
		profile.Allergies = []string{}
	}
	return &profile, nil
}

// Save writes every mutable field back, including the recomputed derived
// metrics. Callers are expected to have run the nutrition recomputation when
// a biometric or goal field changed.
func (r *UserProfileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET age = $1,
			gender = $2,
			height_cm = $3,
			weight_kg = $4,
			initial_weight_kg = $5,
			target_weight_kg = $6,
			activity_level = $7,
			fitness_goal = $8,
			dietary_preferences = $9,
			allergies = $10,
			water_goal_ml = $11,
			bmi = $12,
			daily_calorie_target = $13,
			protein_g = $14,
			carbs_g = $15,
			fats_g = $16,
			profile_complete = $17,
			updated_at = NOW()
		WHERE user_id = $18
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query,
		profile.Age,
		profile.Gender,
		profile.HeightCM,
		profile.WeightKG,
		profile.InitialWeightKG,
		profile.TargetWeightKG,
		profile.ActivityLevel,
		profile.FitnessGoal,
		profile.DietaryPreferences,
		profile.Allergies,
		profile.WaterGoalML,
		profile.BMI,
		profile.DailyCalorieTarget,
		profile.Macros.Protein,
		profile.Macros.Carbs,
		profile.Macros.Fats,
		profile.ProfileComplete,
		profile.UserID,
	).Scan(&profile.UpdatedAt)
}

func (r *UserProfileRepository) UpdateWeight(ctx context.Context, userID int64, weightKG float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_profiles
		SET weight_kg = $1,
			initial_weight_kg = COALESCE(initial_weight_kg, $1),
			updated_at = NOW()
		WHERE user_id = $2
	`, weightKG, userID)
	return err
}

type GoalCount struct {
	FitnessGoal string
	Count       int
}

func (r *UserProfileRepository) GoalDistribution(ctx context.Context) ([]GoalCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT fitness_goal, COUNT(*)
		FROM user_profiles
		WHERE fitness_goal <> ''
		GROUP BY fitness_goal
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []GoalCount{}
	for rows.Next() {
		var gc GoalCount
		if err := rows.Scan(&gc.FitnessGoal, &gc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}
