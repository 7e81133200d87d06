package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/fittrack/internal/chart"
	"github.com/dukerupert/fittrack/internal/model"
	"github.com/google/uuid"
)

// CheckinStore is the remote check-in repository: one daily_checkins row per
// (user_id, checkin_date) with meals and activities hanging off it.
type CheckinStore struct {
	db *sql.DB
}

func NewCheckinStore(db *sql.DB) *CheckinStore {
	return &CheckinStore{db: db}
}

const checkinCols = `id, user_id, checkin_date, total_calories_consumed, water_intake_ml, sleep_hours, steps_count, created_at, updated_at`

func scanCheckin(scanner interface{ Scan(...any) error }) (*model.Checkin, error) {
	var c model.Checkin
	var sleep sql.NullFloat64
	var steps sql.NullInt64

	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Date, &c.TotalCaloriesConsumed, &c.WaterIntakeML,
		&sleep, &steps, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sleep.Valid {
		c.SleepHours = &sleep.Float64
	}
	if steps.Valid {
		c.StepsCount = &steps.Int64
	}
	c.Activities = []model.Activity{}
	return &c, nil
}

// GetByDate returns the checkin for the exact (user, date) pair with its
// meals and activities loaded, or nil if no row exists yet.
func (s *CheckinStore) GetByDate(ctx context.Context, userID, date string) (*model.Checkin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkinCols+` FROM daily_checkins WHERE user_id = ? AND checkin_date = ?`,
		userID, date,
	)
	c, err := scanCheckin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkin %s/%s: %w", userID, date, err)
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CheckinStore) GetByID(ctx context.Context, id string) (*model.Checkin, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checkinCols+` FROM daily_checkins WHERE id = ?`, id)
	c, err := scanCheckin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkin %s: %w", id, err)
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CheckinStore) hydrate(ctx context.Context, c *model.Checkin) error {
	meals, err := s.MealsForCheckin(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Meals = model.SlotsFromMeals(meals)

	activities, err := s.ActivitiesForCheckins(ctx, []string{c.ID})
	if err != nil {
		return err
	}
	c.Activities = activities
	return nil
}

// GetOrCreate returns the checkin for (user, date), inserting a zeroed row
// first if none exists. The insert is ON CONFLICT DO NOTHING against the
// (user_id, checkin_date) unique key, so two racing callers both end up
// reading the single row that won.
func (s *CheckinStore) GetOrCreate(ctx context.Context, userID, date string) (*model.Checkin, error) {
	c, err := s.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_checkins (id, user_id, checkin_date, total_calories_consumed, water_intake_ml, sleep_hours, steps_count, created_at, updated_at)
		 VALUES (?, ?, ?, 0, 0, NULL, NULL, ?, ?)
		 ON CONFLICT(user_id, checkin_date) DO NOTHING`,
		uuid.NewString(), userID, date, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checkin %s/%s: %w", userID, date, err)
	}

	c, err = s.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("checkin %s/%s missing after insert", userID, date)
	}
	return c, nil
}

// UpdateWater adds deltaML to the day's water intake. Negative deltas are
// accepted.
func (s *CheckinStore) UpdateWater(ctx context.Context, userID, date string, deltaML int) (*model.Checkin, error) {
	c, err := s.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE daily_checkins SET water_intake_ml = water_intake_ml + ?, updated_at = ? WHERE id = ?`,
		deltaML, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update water: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

// UpdateSleep overwrites the day's sleep hours.
func (s *CheckinStore) UpdateSleep(ctx context.Context, userID, date string, hours float64) (*model.Checkin, error) {
	c, err := s.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE daily_checkins SET sleep_hours = ?, updated_at = ? WHERE id = ?`,
		hours, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update sleep: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

// SaveMeals replaces the day's meal rows with one row per non-zero slot and
// sets total_calories_consumed to the sum of all four slots.
func (s *CheckinStore) SaveMeals(ctx context.Context, userID, date string, slots model.MealSlots) (*model.Checkin, error) {
	c, err := s.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meals WHERE checkin_id = ?`, c.ID); err != nil {
		return nil, fmt.Errorf("delete meals: %w", err)
	}

	now := time.Now().UTC()
	for _, slot := range slots.NonZero() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO meals (id, user_id, checkin_id, meal_type, estimated_calories, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), userID, c.ID, string(slot.Type), slot.Calories, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert meal %s: %w", slot.Type, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE daily_checkins SET total_calories_consumed = ?, updated_at = ? WHERE id = ?`,
		slots.Total(), now, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update total calories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit meals: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

// AddActivity appends one activity to the day. Consumed calories are left
// alone; burned calories live only on the activity rows.
func (s *CheckinStore) AddActivity(ctx context.Context, userID, date string, entry model.ActivityEntry) (*model.Checkin, error) {
	c, err := s.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, checkin_id, activity_type, duration_minutes, calories_burned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, c.ID, entry.Type, entry.DurationMinutes, entry.Calories, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

// MealsForCheckin returns the stored meal rows in meal order.
func (s *CheckinStore) MealsForCheckin(ctx context.Context, checkinID string) ([]model.Meal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, checkin_id, meal_type, estimated_calories, created_at FROM meals
		 WHERE checkin_id = ?
		 ORDER BY CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 3 END, rowid`,
		checkinID,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		var m model.Meal
		var mealType string
		if err := rows.Scan(&m.ID, &m.UserID, &m.CheckinID, &mealType, &m.EstimatedCalories, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		m.MealType = model.MealType(mealType)
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// ActivitiesForCheckins returns activity rows linked to any of the given
// checkins, oldest first.
func (s *CheckinStore) ActivitiesForCheckins(ctx context.Context, checkinIDs []string) ([]model.Activity, error) {
	activities := []model.Activity{}
	if len(checkinIDs) == 0 {
		return activities, nil
	}

	args := make([]any, len(checkinIDs))
	for i, id := range checkinIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, checkin_id, activity_type, duration_minutes, calories_burned, created_at FROM activities
		 WHERE checkin_id IN (`+placeholders(len(checkinIDs))+`)
		 ORDER BY created_at, rowid`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.CheckinID, &a.ActivityType, &a.DurationMinutes, &a.CaloriesBurned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ListForDates returns the user's checkins whose date is in dates, ascending.
// Child rows are not loaded.
func (s *CheckinStore) ListForDates(ctx context.Context, userID string, dates []string) ([]model.Checkin, error) {
	checkins := []model.Checkin{}
	if len(dates) == 0 {
		return checkins, nil
	}

	args := make([]any, 0, len(dates)+1)
	args = append(args, userID)
	for _, d := range dates {
		args = append(args, d)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkinCols+` FROM daily_checkins
		 WHERE user_id = ? AND checkin_date IN (`+placeholders(len(dates))+`)
		 ORDER BY checkin_date`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		checkins = append(checkins, *c)
	}
	return checkins, rows.Err()
}

// ChartSeries sums burned calories per day over dates, zero-filling days
// with no checkin or no activities.
func (s *CheckinStore) ChartSeries(ctx context.Context, userID string, dates []string) ([]model.ChartPoint, error) {
	checkins, err := s.ListForDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(checkins))
	for i, c := range checkins {
		ids[i] = c.ID
	}

	activities, err := s.ActivitiesForCheckins(ctx, ids)
	if err != nil {
		return nil, err
	}
	return chart.FromCheckins(dates, checkins, activities), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
