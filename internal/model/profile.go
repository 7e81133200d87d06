package model

import "time"

// ActivityLevels are the accepted values for Profile.ActivityLevel.
var ActivityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}

type Profile struct {
	UserID          string    `json:"user_id"`
	HeightCM        int       `json:"height_cm" validate:"gte=50,lte=300"`
	CurrentWeightKG float64   `json:"current_weight_kg" validate:"gte=20,lte=500"`
	Age             *int      `json:"age" validate:"omitempty,gte=10,lte=120"`
	ActivityLevel   string    `json:"activity_level" validate:"required,activity_level"`
	Gender          string    `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Goal struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	TargetWeightKG     float64   `json:"target_weight_kg" validate:"gte=20,lte=500"`
	DailyCalorieTarget int       `json:"daily_calorie_target" validate:"gte=500,lte=10000"`
	DailyWaterGoalML   int       `json:"daily_water_goal_ml" validate:"gte=500,lte=10000"`
	SleepGoalHours     float64   `json:"sleep_goal_hours" validate:"gte=1,lte=24"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
