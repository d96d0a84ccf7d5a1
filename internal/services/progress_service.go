package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rumi097/Nutriguide/internal/models"
	"github.com/rumi097/Nutriguide/internal/repository"
)

// ErrFutureDate is returned when a caller asks to create a progress record
// for a day that has not started yet.
var ErrFutureDate = errors.New("progress records cannot be created for future dates")

// ErrMealLogNotFound is returned when the referenced log entry is not part
// of the day's record.
var ErrMealLogNotFound = errors.New("meal not found in today's log")

const streakLookbackDays = 30

// MidnightOf normalizes a timestamp to the start of its calendar day.
func MidnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type ProgressService struct {
	db           *pgxpool.Pool
	progressRepo *repository.ProgressRepository
}

func NewProgressService(db *pgxpool.Pool, progressRepo *repository.ProgressRepository) *ProgressService {
	return &ProgressService{db: db, progressRepo: progressRepo}
}

// GetOrCreateDay returns the record for the given calendar day, creating it
// lazily with the supplied targets. Days in the future are rejected.
func (s *ProgressService) GetOrCreateDay(ctx context.Context, userID int64, date time.Time, targets models.NutritionTargets) (*models.DailyProgress, error) {
	day := MidnightOf(date)
	if day.After(MidnightOf(time.Now())) {
		return nil, ErrFutureDate
	}
	return s.progressRepo.GetOrCreate(ctx, userID, day, targets)
}

func (s *ProgressService) Today(ctx context.Context, userID int64, targets models.NutritionTargets) (*models.DailyProgress, error) {
	return s.GetOrCreateDay(ctx, userID, time.Now(), targets)
}

// LogMeal appends an entry to today's record and applies its contribution
// (nutrient x servings) to the running totals in one transaction. The totals
// update is a single-statement increment, so two near-simultaneous logs both
// land.
func (s *ProgressService) LogMeal(ctx context.Context, userID int64, targets models.NutritionTargets, entry models.MealLog) (*models.DailyProgress, error) {
	progress, err := s.Today(ctx, userID, targets)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin log meal: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRepo := repository.NewProgressRepository(tx)

	entry.ProgressID = progress.ID
	if entry.ConsumedAt.IsZero() {
		entry.ConsumedAt = time.Now()
	}
	if err := txRepo.InsertMealLog(ctx, &entry); err != nil {
		return nil, err
	}

	totals, err := txRepo.ApplyNutritionDelta(ctx, progress.ID, models.NutritionTotals{
		Calories:      entry.Calories * entry.Servings,
		Protein:       entry.Protein * entry.Servings,
		Carbohydrates: entry.Carbohydrates * entry.Servings,
		Fats:          entry.Fats * entry.Servings,
	})
	if err != nil {
		return nil, err
	}

	if err := txRepo.SetCompliance(ctx, progress.ID, ScoreCompliance(totals, progress.Targets)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit log meal: %w", err)
	}

	return s.progressRepo.GetByID(ctx, progress.ID)
}

// RemoveMeal deletes a logged entry and symmetrically subtracts its
// contribution from the day's totals.
func (s *ProgressService) RemoveMeal(ctx context.Context, userID int64, targets models.NutritionTargets, logID int64) (*models.DailyProgress, error) {
	progress, err := s.Today(ctx, userID, targets)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin remove meal: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRepo := repository.NewProgressRepository(tx)

	entry, err := txRepo.GetMealLog(ctx, progress.ID, logID)
	if err != nil {
		return nil, ErrMealLogNotFound
	}
	if err := txRepo.DeleteMealLog(ctx, entry.ID); err != nil {
		return nil, err
	}

	totals, err := txRepo.ApplyNutritionDelta(ctx, progress.ID, models.NutritionTotals{
		Calories:      -entry.Calories * entry.Servings,
		Protein:       -entry.Protein * entry.Servings,
		Carbohydrates: -entry.Carbohydrates * entry.Servings,
		Fats:          -entry.Fats * entry.Servings,
	})
	if err != nil {
		return nil, err
	}

	if err := txRepo.SetCompliance(ctx, progress.ID, ScoreCompliance(totals, progress.Targets)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit remove meal: %w", err)
	}

	return s.progressRepo.GetByID(ctx, progress.ID)
}

func (s *ProgressService) LogWater(ctx context.Context, userID int64, targets models.NutritionTargets, amountML int) (int, error) {
	progress, err := s.Today(ctx, userID, targets)
	if err != nil {
		return 0, err
	}
	return s.progressRepo.AddWater(ctx, progress.ID, amountML)
}

// LogWeight records a weight observation on today's record and in the
// intra-day weight log.
func (s *ProgressService) LogWeight(ctx context.Context, userID int64, targets models.NutritionTargets, weight float64) (*models.DailyProgress, error) {
	progress, err := s.Today(ctx, userID, targets)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.SetWeight(ctx, progress.ID, weight); err != nil {
		return nil, err
	}
	if err := s.progressRepo.InsertWeightLog(ctx, progress.ID, weight, time.Now()); err != nil {
		return nil, err
	}
	return s.progressRepo.GetByID(ctx, progress.ID)
}

func (s *ProgressService) History(ctx context.Context, userID int64, from, to time.Time) ([]models.DailyProgress, models.ProgressSummary, error) {
	days, err := s.progressRepo.ListRange(ctx, userID, MidnightOf(from), MidnightOf(to))
	if err != nil {
		return nil, models.ProgressSummary{}, err
	}
	return days, SummarizeProgress(days), nil
}

func (s *ProgressService) Analytics(ctx context.Context, userID int64, lookbackDays int) (models.ProgressAnalytics, error) {
	now := time.Now()
	from := MidnightOf(now).AddDate(0, 0, -lookbackDays)
	days, err := s.progressRepo.ListRange(ctx, userID, from, MidnightOf(now))
	if err != nil {
		return models.ProgressAnalytics{}, err
	}
	return BuildAnalytics(days, now), nil
}

func (s *ProgressService) WeeklySummary(ctx context.Context, userID int64) ([]models.DailyProgress, models.WeeklySummary, error) {
	now := time.Now()
	from := MidnightOf(now).AddDate(0, 0, -7)
	days, err := s.progressRepo.ListRange(ctx, userID, from, MidnightOf(now))
	if err != nil {
		return nil, models.WeeklySummary{}, err
	}
	return days, BuildWeeklySummary(days, now), nil
}

func (s *ProgressService) WeightHistory(ctx context.Context, userID int64, lookbackDays int) ([]repository.WeightEntry, error) {
	since := MidnightOf(time.Now()).AddDate(0, 0, -lookbackDays)
	return s.progressRepo.WeightHistory(ctx, userID, since)
}

// SummarizeProgress computes the compact roll-up for history responses. An
// empty record set yields a zeroed summary.
func SummarizeProgress(days []models.DailyProgress) models.ProgressSummary {
	if len(days) == 0 {
		return models.ProgressSummary{}
	}

	var totalCalories, totalCompliance float64
	for _, day := range days {
		totalCalories += day.Nutrition.Calories
		totalCompliance += day.Compliance.CalorieCompliance
	}

	count := float64(len(days))
	return models.ProgressSummary{
		TotalDays:         len(days),
		AverageCalories:   int(math.Round(totalCalories / count)),
		AverageCompliance: int(math.Round(totalCompliance / count)),
	}
}

// BuildAnalytics turns a date-ascending record set into averages, the weight
// change over the range, the current streak and chart-ready series. Each
// record contributes one chart entry; days without a logged weight keep a
// null slot so the series stay aligned.
func BuildAnalytics(days []models.DailyProgress, now time.Time) models.ProgressAnalytics {
	analytics := models.ProgressAnalytics{
		ChartData: models.ChartSeries{
			Dates:      []string{},
			Calories:   []float64{},
			Protein:    []float64{},
			Carbs:      []float64{},
			Fats:       []float64{},
			Weight:     []*float64{},
			Compliance: []float64{},
		},
	}
	if len(days) == 0 {
		return analytics
	}

	var totalCalories, totalProtein, totalCarbs, totalFats, totalCompliance float64
	weights := []float64{}

	for _, day := range days {
		totalCalories += day.Nutrition.Calories
		totalProtein += day.Nutrition.Protein
		totalCarbs += day.Nutrition.Carbohydrates
		totalFats += day.Nutrition.Fats
		totalCompliance += day.Compliance.CalorieCompliance
		analytics.TotalMealsLogged += len(day.Meals)

		analytics.ChartData.Dates = append(analytics.ChartData.Dates, day.Date.Format("2006-01-02"))
		analytics.ChartData.Calories = append(analytics.ChartData.Calories, day.Nutrition.Calories)
		analytics.ChartData.Protein = append(analytics.ChartData.Protein, day.Nutrition.Protein)
		analytics.ChartData.Carbs = append(analytics.ChartData.Carbs, day.Nutrition.Carbohydrates)
		analytics.ChartData.Fats = append(analytics.ChartData.Fats, day.Nutrition.Fats)
		analytics.ChartData.Compliance = append(analytics.ChartData.Compliance, day.Compliance.CalorieCompliance)

		if day.Weight != nil {
			weight := *day.Weight
			weights = append(weights, weight)
			analytics.ChartData.Weight = append(analytics.ChartData.Weight, &weight)
		} else {
			analytics.ChartData.Weight = append(analytics.ChartData.Weight, nil)
		}
	}

	count := float64(len(days))
	analytics.AverageCalories = int(math.Round(totalCalories / count))
	analytics.AverageProtein = int(math.Round(totalProtein / count))
	analytics.AverageCarbs = int(math.Round(totalCarbs / count))
	analytics.AverageFats = int(math.Round(totalFats / count))
	analytics.CalorieCompliance = int(math.Round(totalCompliance / count))
	analytics.StreakDays = CurrentStreak(days, now)

	if len(weights) >= 2 {
		analytics.WeightChange = math.Round((weights[len(weights)-1]-weights[0])*100) / 100
	}

	return analytics
}

// CurrentStreak counts consecutive calendar days ending today whose logged
// calories are positive, stopping at the first gap. The walk is capped at a
// 30-day look-back window. Dates are keyed by their formatted calendar day:
// record dates scanned from Postgres carry UTC while now is local, and
// time.Time map keys would never match across locations.
func CurrentStreak(days []models.DailyProgress, now time.Time) int {
	byDate := make(map[string]*models.DailyProgress, len(days))
	for i := range days {
		byDate[days[i].Date.Format("2006-01-02")] = &days[i]
	}

	streak := 0
	today := MidnightOf(now)
	for i := 0; i <= streakLookbackDays; i++ {
		day, ok := byDate[today.AddDate(0, 0, -i).Format("2006-01-02")]
		if !ok || day.Nutrition.Calories <= 0 {
			break
		}
		streak++
	}
	return streak
}

// BuildWeeklySummary rolls the last week up for the dashboard cards.
func BuildWeeklySummary(days []models.DailyProgress, now time.Time) models.WeeklySummary {
	summary := models.WeeklySummary{
		DaysTracked:   len(days),
		CurrentStreak: CurrentStreak(days, now),
	}
	if len(days) == 0 {
		return summary
	}

	var totalWater int
	for _, day := range days {
		summary.TotalCalories += day.Nutrition.Calories
		summary.TotalProteinG += day.Nutrition.Protein
		summary.TotalCarbsG += day.Nutrition.Carbohydrates
		summary.TotalFatsG += day.Nutrition.Fats
		summary.TotalMeals += len(day.Meals)
		totalWater += day.WaterIntakeML
	}

	count := float64(len(days))
	summary.AvgCalories = int(math.Round(summary.TotalCalories / count))
	summary.AvgWaterML = int(math.Round(float64(totalWater) / count))
	return summary
}
