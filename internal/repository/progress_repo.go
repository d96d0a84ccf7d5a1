package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rumi097/Nutriguide/internal/models"
)

type ProgressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `
	id, user_id, date, weight, water_intake_ml,
	target_calories, target_protein, target_carbohydrates, target_fats,
	total_calories, total_protein, total_carbohydrates, total_fats,
	calorie_compliance, macro_compliance, created_at, updated_at
`

func scanProgress(row pgx.Row) (*models.DailyProgress, error) {
	var p models.DailyProgress
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Date,
		&p.Weight,
		&p.WaterIntakeML,
		&p.Targets.Calories,
		&p.Targets.Protein,
		&p.Targets.Carbohydrates,
		&p.Targets.Fats,
		&p.Nutrition.Calories,
		&p.Nutrition.Protein,
		&p.Nutrition.Carbohydrates,
		&p.Nutrition.Fats,
		&p.Compliance.CalorieCompliance,
		&p.Compliance.MacroCompliance,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Meals = []models.MealLog{}
	return &p, nil
}

// GetOrCreate returns the record for (userID, date), creating it with the
// given targets on first write. The insert races safely: ON CONFLICT DO
// NOTHING followed by a re-select means two concurrent callers converge on
// the same row.
func (r *ProgressRepository) GetOrCreate(ctx context.Context, userID int64, date time.Time, targets models.NutritionTargets) (*models.DailyProgress, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO daily_progress (
			user_id, date, target_calories, target_protein, target_carbohydrates, target_fats
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO NOTHING
	`, userID, date, targets.Calories, targets.Protein, targets.Carbohydrates, targets.Fats)
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndDate(ctx, userID, date)
}

func (r *ProgressRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*models.DailyProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE user_id = $1 AND date = $2`
	progress, err := scanProgress(r.db.QueryRow(ctx, query, userID, date))
	if err != nil {
		return nil, err
	}
	meals, err := r.listMealLogs(ctx, progress.ID)
	if err != nil {
		return nil, err
	}
	progress.Meals = meals
	return progress, nil
}

func (r *ProgressRepository) GetByID(ctx context.Context, id int64) (*models.DailyProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE id = $1`
	progress, err := scanProgress(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	meals, err := r.listMealLogs(ctx, progress.ID)
	if err != nil {
		return nil, err
	}
	progress.Meals = meals
	return progress, nil
}

// ListRange returns records in [from, to] in ascending date order, with meal
// logs attached.
func (r *ProgressRepository) ListRange(ctx context.Context, userID int64, from, to time.Time) ([]models.DailyProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM daily_progress
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []models.DailyProgress{}
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(days)
		days = append(days, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return days, nil
	}

	ids := make([]int64, 0, len(days))
	for id := range index {
		ids = append(ids, id)
	}
	logRows, err := r.db.Query(ctx, `
		SELECT id, progress_id, meal_id, meal_name, category, servings,
			   calories, protein, carbohydrates, fats, consumed_at
		FROM meal_logs
		WHERE progress_id = ANY($1)
		ORDER BY consumed_at, id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer logRows.Close()

	for logRows.Next() {
		var log models.MealLog
		if err := logRows.Scan(
			&log.ID,
			&log.ProgressID,
			&log.MealID,
			&log.MealName,
			&log.Category,
			&log.Servings,
			&log.Calories,
			&log.Protein,
			&log.Carbohydrates,
			&log.Fats,
			&log.ConsumedAt,
		); err != nil {
			return nil, err
		}
		if i, ok := index[log.ProgressID]; ok {
			days[i].Meals = append(days[i].Meals, log)
		}
	}
	return days, logRows.Err()
}

func (r *ProgressRepository) listMealLogs(ctx context.Context, progressID int64) ([]models.MealLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, progress_id, meal_id, meal_name, category, servings,
			   calories, protein, carbohydrates, fats, consumed_at
		FROM meal_logs
		WHERE progress_id = $1
		ORDER BY consumed_at, id
	`, progressID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.MealLog{}
	for rows.Next() {
		var log models.MealLog
		if err := rows.Scan(
			&log.ID,
			&log.ProgressID,
			&log.MealID,
			&log.MealName,
			&log.Category,
			&log.Servings,
			&log.Calories,
			&log.Protein,
			&log.Carbohydrates,
			&log.Fats,
			&log.ConsumedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *ProgressRepository) InsertMealLog(ctx context.Context, log *models.MealLog) error {
	query := `
		INSERT INTO meal_logs (
			progress_id, meal_id, meal_name, category, servings,
			calories, protein, carbohydrates, fats, consumed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		log.ProgressID,
		log.MealID,
		log.MealName,
		log.Category,
		log.Servings,
		log.Calories,
		log.Protein,
		log.Carbohydrates,
		log.Fats,
		log.ConsumedAt,
	).Scan(&log.ID)
}

func (r *ProgressRepository) GetMealLog(ctx context.Context, progressID, logID int64) (*models.MealLog, error) {
	var log models.MealLog
	err := r.db.QueryRow(ctx, `
		SELECT id, progress_id, meal_id, meal_name, category, servings,
			   calories, protein, carbohydrates, fats, consumed_at
		FROM meal_logs
		WHERE id = $1 AND progress_id = $2
	`, logID, progressID).Scan(
		&log.ID,
		&log.ProgressID,
		&log.MealID,
		&log.MealName,
		&log.Category,
		&log.Servings,
		&log.Calories,
		&log.Protein,
		&log.Carbohydrates,
		&log.Fats,
		&log.ConsumedAt,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *ProgressRepository) DeleteMealLog(ctx context.Context, logID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meal_logs WHERE id = $1`, logID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyNutritionDelta adds (or, with negative values, subtracts) a meal's
// contribution in a single statement, so concurrent logs against the same
// day cannot lose an update. Returns the new totals.
func (r *ProgressRepository) ApplyNutritionDelta(ctx context.Context, progressID int64, delta models.NutritionTotals) (models.NutritionTotals, error) {
	var totals models.NutritionTotals
	err := r.db.QueryRow(ctx, `
		UPDATE daily_progress
		SET total_calories = total_calories + $1,
			total_protein = total_protein + $2,
			total_carbohydrates = total_carbohydrates + $3,
			total_fats = total_fats + $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING total_calories, total_protein, total_carbohydrates, total_fats
	`, delta.Calories, delta.Protein, delta.Carbohydrates, delta.Fats, progressID).Scan(
		&totals.Calories,
		&totals.Protein,
		&totals.Carbohydrates,
		&totals.Fats,
	)
	return totals, err
}

func (r *ProgressRepository) SetCompliance(ctx context.Context, progressID int64, compliance models.Compliance) error {
	_, err := r.db.Exec(ctx, `
		UPDATE daily_progress
		SET calorie_compliance = $1, macro_compliance = $2, updated_at = NOW()
		WHERE id = $3
	`, compliance.CalorieCompliance, compliance.MacroCompliance, progressID)
	return err
}

func (r *ProgressRepository) SetWeight(ctx context.Context, progressID int64, weight float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE daily_progress SET weight = $1, updated_at = NOW() WHERE id = $2
	`, weight, progressID)
	return err
}

func (r *ProgressRepository) InsertWeightLog(ctx context.Context, progressID int64, weight float64, loggedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO weight_logs (progress_id, weight, logged_at) VALUES ($1, $2, $3)
	`, progressID, weight, loggedAt)
	return err
}

// AddWater atomically increments the day's water intake and returns the new
// running total.
func (r *ProgressRepository) AddWater(ctx context.Context, progressID int64, amountML int) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		UPDATE daily_progress
		SET water_intake_ml = water_intake_ml + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING water_intake_ml
	`, amountML, progressID).Scan(&total)
	return total, err
}

type WeightEntry struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

func (r *ProgressRepository) WeightHistory(ctx context.Context, userID int64, since time.Time) ([]WeightEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, weight
		FROM daily_progress
		WHERE user_id = $1 AND date >= $2 AND weight IS NOT NULL
		ORDER BY date
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []WeightEntry{}
	for rows.Next() {
		var entry WeightEntry
		if err := rows.Scan(&entry.Date, &entry.Weight); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

type DayActivity struct {
	Date        time.Time `json:"date"`
	ActiveUsers int       `json:"active_users"`
	MealsLogged int       `json:"meals_logged"`
}

func (r *ProgressRepository) ActivitySince(ctx context.Context, since time.Time) ([]DayActivity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT dp.date, COUNT(DISTINCT dp.user_id), COUNT(ml.id)
		FROM daily_progress dp
		LEFT JOIN meal_logs ml ON ml.progress_id = dp.id
		WHERE dp.date >= $1
		GROUP BY dp.date
		ORDER BY dp.date
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := []DayActivity{}
	for rows.Next() {
		var day DayActivity
		if err := rows.Scan(&day.Date, &day.ActiveUsers, &day.MealsLogged); err != nil {
			return nil, err
		}
		activity = append(activity, day)
	}
	return activity, rows.Err()
}

type TodayStats struct {
	TrackedUsers int
	AvgCalories  int
}

func (r *ProgressRepository) StatsForDate(ctx context.Context, date time.Time) (TodayStats, error) {
	var stats TodayStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(ROUND(AVG(total_calories)), 0)
		FROM daily_progress
		WHERE date = $1
	`, date).Scan(&stats.TrackedUsers, &stats.AvgCalories)
	return stats, err
}
