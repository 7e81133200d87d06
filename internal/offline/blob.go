package offline

import (
	"github.com/dukerupert/fittrack/internal/model"
)

// Stored keys. The "@fittrack_offline_" prefix matches what earlier client
// builds wrote, so an existing cache keeps working.
const (
	KeyProfile     = "@fittrack_offline_profile"
	KeyGoal        = "@fittrack_offline_goal"
	KeyToday       = "@fittrack_offline_today"
	KeyChart       = "@fittrack_offline_chart"
	KeyInitialized = "@fittrack_offline_init"
)

var allKeys = []string{KeyProfile, KeyGoal, KeyToday, KeyChart, KeyInitialized}

type profileBlob struct {
	HeightCM        int     `json:"height_cm"`
	CurrentWeightKG float64 `json:"current_weight_kg"`
	Age             int     `json:"age"`
	ActivityLevel   string  `json:"activity_level"`
}

type goalBlob struct {
	TargetWeightKG     float64 `json:"target_weight_kg"`
	DailyCalorieTarget int     `json:"daily_calorie_target"`
	DailyWaterGoalML   int     `json:"daily_water_goal_ml"`
	SleepGoalHours     float64 `json:"sleep_goal_hours"`
}

type activityBlob struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	Calories int    `json:"calories"`
}

type checkinBlob struct {
	Date                  string         `json:"date"`
	TotalCaloriesConsumed int            `json:"total_calories_consumed"`
	BreakfastCalories     int            `json:"breakfast_calories"`
	LunchCalories         int            `json:"lunch_calories"`
	DinnerCalories        int            `json:"dinner_calories"`
	SnacksCalories        int            `json:"snacks_calories"`
	WaterIntakeML         int            `json:"water_intake_ml"`
	SleepHours            float64        `json:"sleep_hours"`
	Activities            []activityBlob `json:"activities"`
}

type chartBlob struct {
	Date           string `json:"date"`
	CaloriesBurned int    `json:"calories_burned"`
}

var defaultProfile = profileBlob{
	HeightCM:        180,
	CurrentWeightKG: 80,
	Age:             30,
	ActivityLevel:   "moderate",
}

var defaultGoal = goalBlob{
	TargetWeightKG:     72,
	DailyCalorieTarget: 2000,
	DailyWaterGoalML:   2000,
	SleepGoalHours:     8,
}

// defaultChartCalories is the seeded burn history, oldest day first. The
// last entry is today.
var defaultChartCalories = []int{280, 420, 350, 180, 450, 320, 150}

func defaultCheckin(date string) checkinBlob {
	return checkinBlob{
		Date:                  date,
		TotalCaloriesConsumed: 850,
		BreakfastCalories:     350,
		LunchCalories:         500,
		WaterIntakeML:         750,
		SleepHours:            7.5,
		Activities:            []activityBlob{{Type: "walk", Duration: 30, Calories: 150}},
	}
}

// rolledOver is the blank day that replaces a stale "today". Sleep keeps the
// default so the sleep card is never empty.
func rolledOver(date string) checkinBlob {
	c := defaultCheckin(date)
	c.TotalCaloriesConsumed = 0
	c.BreakfastCalories = 0
	c.LunchCalories = 0
	c.DinnerCalories = 0
	c.SnacksCalories = 0
	c.WaterIntakeML = 0
	c.Activities = []activityBlob{}
	return c
}

func defaultChart(dates []string) []chartBlob {
	out := make([]chartBlob, len(dates))
	for i, d := range dates {
		cal := 0
		if j := i + len(defaultChartCalories) - len(dates); j >= 0 && j < len(defaultChartCalories) {
			cal = defaultChartCalories[j]
		}
		out[i] = chartBlob{Date: d, CaloriesBurned: cal}
	}
	return out
}

func (c checkinBlob) slots() model.MealSlots {
	return model.MealSlots{
		Breakfast: c.BreakfastCalories,
		Lunch:     c.LunchCalories,
		Dinner:    c.DinnerCalories,
		Snacks:    c.SnacksCalories,
	}
}

func (c *checkinBlob) setSlots(m model.MealSlots) {
	c.BreakfastCalories = m.Breakfast
	c.LunchCalories = m.Lunch
	c.DinnerCalories = m.Dinner
	c.SnacksCalories = m.Snacks
}

func (c checkinBlob) toModel() *model.Checkin {
	sleep := c.SleepHours
	activities := make([]model.Activity, len(c.Activities))
	for i, a := range c.Activities {
		activities[i] = model.Activity{
			ActivityType:    a.Type,
			DurationMinutes: a.Duration,
			CaloriesBurned:  a.Calories,
		}
	}
	return &model.Checkin{
		ID:                    "offline-" + c.Date,
		Date:                  c.Date,
		TotalCaloriesConsumed: c.TotalCaloriesConsumed,
		WaterIntakeML:         c.WaterIntakeML,
		SleepHours:            &sleep,
		Meals:                 c.slots(),
		Activities:            activities,
	}
}

func (p profileBlob) toModel() *model.Profile {
	age := p.Age
	return &model.Profile{
		HeightCM:        p.HeightCM,
		CurrentWeightKG: p.CurrentWeightKG,
		Age:             &age,
		ActivityLevel:   p.ActivityLevel,
	}
}

func profileFromModel(p model.Profile) profileBlob {
	b := profileBlob{
		HeightCM:        p.HeightCM,
		CurrentWeightKG: p.CurrentWeightKG,
		ActivityLevel:   p.ActivityLevel,
	}
	if p.Age != nil {
		b.Age = *p.Age
	}
	return b
}

func (g goalBlob) toModel() *model.Goal {
	return &model.Goal{
		TargetWeightKG:     g.TargetWeightKG,
		DailyCalorieTarget: g.DailyCalorieTarget,
		DailyWaterGoalML:   g.DailyWaterGoalML,
		SleepGoalHours:     g.SleepGoalHours,
		IsActive:           true,
	}
}

func goalFromModel(g model.Goal) goalBlob {
	return goalBlob{
		TargetWeightKG:     g.TargetWeightKG,
		DailyCalorieTarget: g.DailyCalorieTarget,
		DailyWaterGoalML:   g.DailyWaterGoalML,
		SleepGoalHours:     g.SleepGoalHours,
	}
}

func chartToModel(series []chartBlob) []model.ChartPoint {
	out := make([]model.ChartPoint, len(series))
	for i, p := range series {
		out[i] = model.ChartPoint{Date: p.Date, Calories: p.CaloriesBurned}
	}
	return out
}

func chartFromModel(series []model.ChartPoint) []chartBlob {
	out := make([]chartBlob, len(series))
	for i, p := range series {
		out[i] = chartBlob{Date: p.Date, CaloriesBurned: p.Calories}
	}
	return out
}
