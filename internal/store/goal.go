package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/fittrack/internal/model"
	"github.com/google/uuid"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

const goalCols = `id, user_id, target_weight_kg, daily_calorie_target, daily_water_goal_ml, sleep_goal_hours, is_active, created_at, updated_at`

func scanGoal(scanner interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var active int
	err := scanner.Scan(
		&g.ID, &g.UserID, &g.TargetWeightKG, &g.DailyCalorieTarget, &g.DailyWaterGoalML,
		&g.SleepGoalHours, &active, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.IsActive = active != 0
	return &g, nil
}

// GetActive returns the user's most recent active goal, or nil.
func (s *GoalStore) GetActive(ctx context.Context, userID string) (*model.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+goalCols+` FROM user_goals
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		userID,
	)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active goal %s: %w", userID, err)
	}
	return g, nil
}

// Replace deactivates the user's current goals and inserts g as the new
// active goal. Old goals are kept for history.
func (s *GoalStore) Replace(ctx context.Context, g model.Goal) (*model.Goal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_goals SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1`,
		now, g.UserID,
	); err != nil {
		return nil, fmt.Errorf("deactivate goals: %w", err)
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_goals (id, user_id, target_weight_kg, daily_calorie_target, daily_water_goal_ml, sleep_goal_hours, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, g.UserID, g.TargetWeightKG, g.DailyCalorieTarget, g.DailyWaterGoalML, g.SleepGoalHours, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit goal: %w", err)
	}
	return s.GetActive(ctx, g.UserID)
}

// CountForUser returns how many goals (active or not) the user has saved.
func (s *GoalStore) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_goals WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count goals: %w", err)
	}
	return n, nil
}
