package model

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

type Meal struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CheckinID         string    `json:"checkin_id"`
	MealType          MealType  `json:"meal_type"`
	EstimatedCalories int       `json:"estimated_calories"`
	CreatedAt         time.Time `json:"created_at"`
}

// MealSlots holds the calorie estimate for each of the four daily meals.
type MealSlots struct {
	Breakfast int `json:"breakfast" validate:"gte=0,lte=20000"`
	Lunch     int `json:"lunch" validate:"gte=0,lte=20000"`
	Dinner    int `json:"dinner" validate:"gte=0,lte=20000"`
	Snacks    int `json:"snacks" validate:"gte=0,lte=20000"`
}

// Total is the derived total_calories_consumed for a checkin. Zero slots
// count toward the sum even though they are never stored as rows.
func (m MealSlots) Total() int {
	return m.Breakfast + m.Lunch + m.Dinner + m.Snacks
}

// SlotCalories pairs a meal type with its calorie estimate.
type SlotCalories struct {
	Type     MealType
	Calories int
}

// NonZero returns one entry per slot with calories > 0, in meal order.
func (m MealSlots) NonZero() []SlotCalories {
	all := []SlotCalories{
		{MealBreakfast, m.Breakfast},
		{MealLunch, m.Lunch},
		{MealDinner, m.Dinner},
		{MealSnack, m.Snacks},
	}
	out := make([]SlotCalories, 0, len(all))
	for _, s := range all {
		if s.Calories > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SlotsFromMeals folds meal rows back into slots. Multiple rows of the same
// type are summed.
func SlotsFromMeals(meals []Meal) MealSlots {
	var m MealSlots
	for _, meal := range meals {
		switch meal.MealType {
		case MealBreakfast:
			m.Breakfast += meal.EstimatedCalories
		case MealLunch:
			m.Lunch += meal.EstimatedCalories
		case MealDinner:
			m.Dinner += meal.EstimatedCalories
		case MealSnack:
			m.Snacks += meal.EstimatedCalories
		}
	}
	return m
}
