package model

import "time"

// Checkin is the per-user, per-date aggregate of consumption, water, sleep
// and activity. Meals and Activities are the materialized child rows.
type Checkin struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	Date                  string     `json:"checkin_date"`
	TotalCaloriesConsumed int        `json:"total_calories_consumed"`
	WaterIntakeML         int        `json:"water_intake_ml"`
	SleepHours            *float64   `json:"sleep_hours"`
	StepsCount            *int64     `json:"steps_count"`
	Meals                 MealSlots  `json:"meals"`
	Activities            []Activity `json:"activities"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// TotalCaloriesBurned sums calories across the checkin's activities.
func (c *Checkin) TotalCaloriesBurned() int {
	total := 0
	for _, a := range c.Activities {
		total += a.CaloriesBurned
	}
	return total
}

type ChartPoint struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
}
