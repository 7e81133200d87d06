package store

import (
	"context"
	"fmt"

	"github.com/dukerupert/fittrack/internal/model"
)

var demoExercise = []model.ActivityEntry{
	{Type: "walk", DurationMinutes: 30, Calories: 250},
	{Type: "run", DurationMinutes: 40, Calories: 400},
	{Type: "gym", DurationMinutes: 45, Calories: 300},
	{Type: "walk", DurationMinutes: 25, Calories: 200},
	{Type: "gym", DurationMinutes: 60, Calories: 450},
	{Type: "run", DurationMinutes: 35, Calories: 350},
	{Type: "walk", DurationMinutes: 35, Calories: 280},
}

// SeedDemo fills in a demo profile, goal and one activity per date for
// userID. Anything that already exists is left as is, so running it twice
// changes nothing.
func SeedDemo(ctx context.Context, checkins *CheckinStore, profiles *ProfileStore, goals *GoalStore, userID string, dates []string) error {
	profile, err := profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		age := 30
		if _, err := profiles.Upsert(ctx, model.Profile{
			UserID:          userID,
			HeightCM:        180,
			CurrentWeightKG: 80,
			Age:             &age,
			ActivityLevel:   "moderate",
		}); err != nil {
			return err
		}
	}

	goal, err := goals.GetActive(ctx, userID)
	if err != nil {
		return err
	}
	if goal == nil {
		if _, err := goals.Replace(ctx, model.Goal{
			UserID:             userID,
			TargetWeightKG:     72,
			DailyCalorieTarget: 2000,
			DailyWaterGoalML:   2000,
			SleepGoalHours:     8,
		}); err != nil {
			return err
		}
	}

	for i, date := range dates {
		c, err := checkins.GetOrCreate(ctx, userID, date)
		if err != nil {
			return fmt.Errorf("seed %s: %w", date, err)
		}
		if len(c.Activities) == 0 {
			if _, err := checkins.AddActivity(ctx, userID, date, demoExercise[i%len(demoExercise)]); err != nil {
				return fmt.Errorf("seed activity %s: %w", date, err)
			}
		}
		if c.WaterIntakeML == 0 {
			if _, err := checkins.UpdateWater(ctx, userID, date, 1500+100*(i%5)); err != nil {
				return fmt.Errorf("seed water %s: %w", date, err)
			}
		}
		if c.SleepHours == nil {
			if _, err := checkins.UpdateSleep(ctx, userID, date, 6.5+0.5*float64(i%3)); err != nil {
				return fmt.Errorf("seed sleep %s: %w", date, err)
			}
		}
	}
	return nil
}
