package model

import "time"

// ActivityTypes lists the activity kinds offered when logging exercise.
var ActivityTypes = []string{"walk", "run", "gym", "swim", "cycle", "yoga", "other"}

type Activity struct {
	ID              string    `json:"id,omitempty"`
	UserID          string    `json:"user_id,omitempty"`
	CheckinID       string    `json:"checkin_id,omitempty"`
	ActivityType    string    `json:"activity_type"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// ActivityEntry is the input for logging one activity.
type ActivityEntry struct {
	Type            string `json:"type" validate:"required,activity_type"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0,lte=1440"`
	Calories        int    `json:"calories" validate:"gte=0,lte=20000"`
}
