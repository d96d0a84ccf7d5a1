package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
)

type MealRepository struct {
	db DBTX
}

func NewMealRepository(db DBTX) *MealRepository {
	return &MealRepository{db: db}
}

const mealColumns = `
	id, name, description, category, cuisine,
	calories, protein, carbohydrates, fats, fiber, sugar, sodium,
	serving_size, dietary_tags, allergens, image_url, prep_time_min, cook_time_min,
	popularity, rating, is_active, created_at, updated_at
`

func scanMeal(row pgx.Row) (*models.Meal, error) {
	var meal models.Meal
	err := row.Scan(
		&meal.ID,
		&meal.Name,
		&meal.Description,
		&meal.Category,
		&meal.Cuisine,
		&meal.Nutrition.Calories,
		&meal.Nutrition.Protein,
		&meal.Nutrition.Carbohydrates,
		&meal.Nutrition.Fats,
		&meal.Nutrition.Fiber,
		&meal.Nutrition.Sugar,
		&meal.Nutrition.Sodium,
		&meal.ServingSize,
		&meal.DietaryTags,
		&meal.Allergens,
		&meal.ImageURL,
		&meal.PrepTimeMin,
		&meal.CookTimeMin,
		&meal.Popularity,
		&meal.Rating,
		&meal.IsActive,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if meal.DietaryTags == nil {
		meal.DietaryTags = []string{}
	}
	if meal.Allergens == nil {
		meal.Allergens = []string{}
	}
	return &meal, nil
}

func (r *MealRepository) Create(ctx context.Context, meal *models.Meal) error {
	query := `
		INSERT INTO meals (
			name, description, category, cuisine,
			calories, protein, carbohydrates, fats, fiber, sugar, sodium,
			serving_size, dietary_tags, allergens, image_url, prep_time_min, cook_time_min,
			popularity, rating
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, is_active, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		meal.Name,
		meal.Description,
		meal.Category,
		meal.Cuisine,
		meal.Nutrition.Calories,
		meal.Nutrition.Protein,
		meal.Nutrition.Carbohydrates,
		meal.Nutrition.Fats,
		meal.Nutrition.Fiber,
		meal.Nutrition.Sugar,
		meal.Nutrition.Sodium,
		meal.ServingSize,
		meal.DietaryTags,
		meal.Allergens,
		meal.ImageURL,
		meal.PrepTimeMin,
		meal.CookTimeMin,
		meal.Popularity,
		meal.Rating,
	).Scan(&meal.ID, &meal.IsActive, &meal.CreatedAt, &meal.UpdatedAt)
}

func (r *MealRepository) GetByID(ctx context.Context, id int64) (*models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`
	return scanMeal(r.db.QueryRow(ctx, query, id))
}

func (r *MealRepository) Update(ctx context.Context, meal *models.Meal) error {
	query := `
		UPDATE meals
		SET name = $1,
			description = $2,
			category = $3,
			cuisine = $4,
			calories = $5,
			protein = $6,
			carbohydrates = $7,
			fats = $8,
			fiber = $9,
			sugar = $10,
			sodium = $11,
			serving_size = $12,
			dietary_tags = $13,
			allergens = $14,
			image_url = $15,
			prep_time_min = $16,
			cook_time_min = $17,
			popularity = $18,
			rating = $19,
			is_active = $20,
			updated_at = NOW()
		WHERE id = $21
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query,
		meal.Name,
		meal.Description,
		meal.Category,
		meal.Cuisine,
		meal.Nutrition.Calories,
		meal.Nutrition.Protein,
		meal.Nutrition.Carbohydrates,
		meal.Nutrition.Fats,
		meal.Nutrition.Fiber,
		meal.Nutrition.Sugar,
		meal.Nutrition.Sodium,
		meal.ServingSize,
		meal.DietaryTags,
		meal.Allergens,
		meal.ImageURL,
		meal.PrepTimeMin,
		meal.CookTimeMin,
		meal.Popularity,
		meal.Rating,
		meal.IsActive,
		meal.ID,
	).Scan(&meal.UpdatedAt)
}

// SoftDelete marks a meal inactive; catalog records are never removed so
// snapshotted meal logs keep a valid reference.
func (r *MealRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE meals SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type MealListFilter struct {
	Category    string
	Search      string
	DietaryTags []string
	MaxCalories float64
	MinProtein  float64
	Offset      int
	Limit       int
}

func (r *MealRepository) List(ctx context.Context, filter MealListFilter) ([]models.Meal, int, error) {
	conditions := []string{"is_active = TRUE"}
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args)))
	}
	if len(filter.DietaryTags) > 0 {
		args = append(args, filter.DietaryTags)
		conditions = append(conditions, fmt.Sprintf("dietary_tags && $%d", len(args)))
	}
	if filter.MaxCalories > 0 {
		args = append(args, filter.MaxCalories)
		conditions = append(conditions, fmt.Sprintf("calories <= $%d", len(args)))
	}
	if filter.MinProtein > 0 {
		args = append(args, filter.MinProtein)
		conditions = append(conditions, fmt.Sprintf("protein >= $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM meals WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM meals WHERE %s ORDER BY popularity DESC, id LIMIT $%d OFFSET $%d`,
		mealColumns, where, len(args)-1, len(args))

	meals, err := r.queryMeals(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return meals, total, nil
}

// CandidateFilter narrows the catalog for meal matching. Preference and
// allergen lists are optional; an empty list skips that predicate.
type CandidateFilter struct {
	MinCalories        float64
	MaxCalories        float64
	DietaryPreferences []string
	ExcludeAllergens   []string
	Limit              int
}

// ListCandidates returns active meals inside a calorie band that overlap the
// requested dietary tags and carry none of the excluded allergens, most
// popular first with id as the stable tie-break. All predicates run before
// the limit so a page of popular mismatches cannot mask suitable meals.
func (r *MealRepository) ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.Meal, error) {
	conditions := []string{"is_active = TRUE"}
	args := []any{}

	args = append(args, filter.MinCalories)
	conditions = append(conditions, fmt.Sprintf("calories >= $%d", len(args)))
	args = append(args, filter.MaxCalories)
	conditions = append(conditions, fmt.Sprintf("calories <= $%d", len(args)))
	if len(filter.DietaryPreferences) > 0 {
		args = append(args, filter.DietaryPreferences)
		conditions = append(conditions, fmt.Sprintf("dietary_tags && $%d", len(args)))
	}
	if len(filter.ExcludeAllergens) > 0 {
		args = append(args, filter.ExcludeAllergens)
		conditions = append(conditions, fmt.Sprintf("NOT (allergens && $%d)", len(args)))
	}

	args = append(args, filter.Limit)
	query := fmt.Sprintf(
		`SELECT %s FROM meals WHERE %s ORDER BY popularity DESC, id LIMIT $%d`,
		mealColumns, strings.Join(conditions, " AND "), len(args))
	return r.queryMeals(ctx, query, args...)
}

func (r *MealRepository) queryMeals(ctx context.Context, query string, args ...any) ([]models.Meal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, *meal)
	}
	return meals, rows.Err()
}

func (r *MealRepository) BulkCreate(ctx context.Context, meals []models.Meal) (int, error) {
	created := 0
	for i := range meals {
		if err := r.Create(ctx, &meals[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (r *MealRepository) CategorySummary(ctx context.Context) ([]models.CategorySummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*), ROUND(AVG(calories)::numeric, 1)
		FROM meals
		WHERE is_active = TRUE
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := []models.CategorySummary{}
	for rows.Next() {
		var cs models.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Count, &cs.AvgCalories); err != nil {
			return nil, err
		}
		summary = append(summary, cs)
	}
	return summary, rows.Err()
}

func (r *MealRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM meals WHERE is_active = TRUE`).Scan(&count)
	return count, err
}
