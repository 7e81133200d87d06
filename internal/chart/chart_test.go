package chart

import (
	"testing"

	"github.com/dukerupert/fittrack/internal/model"
	"github.com/stretchr/testify/assert"
)

var week = []string{
	"2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12",
	"2024-01-13", "2024-01-14", "2024-01-15",
}

func calories(points []model.ChartPoint) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Calories
	}
	return out
}

func TestDenseZeroFills(t *testing.T) {
	points := Dense(week, map[string]int{"2024-01-11": 90})

	assert.Len(t, points, 7)
	assert.Equal(t, []int{0, 0, 90, 0, 0, 0, 0}, calories(points))
	for i, p := range points {
		assert.Equal(t, week[i], p.Date)
	}
}

func TestFromCheckinsSingleActivityToday(t *testing.T) {
	checkins := []model.Checkin{{ID: "c-today", Date: "2024-01-15"}}
	activities := []model.Activity{{CheckinID: "c-today", CaloriesBurned: 150}}

	points := FromCheckins(week, checkins, activities)

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 150}, calories(points))
}

func TestFromCheckinsSumsPerDay(t *testing.T) {
	checkins := []model.Checkin{
		{ID: "a", Date: "2024-01-10"},
		{ID: "b", Date: "2024-01-12"},
		{ID: "empty", Date: "2024-01-13"},
	}
	activities := []model.Activity{
		{CheckinID: "a", CaloriesBurned: 100},
		{CheckinID: "a", CaloriesBurned: 50},
		{CheckinID: "b", CaloriesBurned: 300},
		{CheckinID: "unknown", CaloriesBurned: 999},
	}

	points := FromCheckins(week, checkins, activities)

	assert.Equal(t, []int{0, 150, 0, 300, 0, 0, 0}, calories(points))
}

func TestFromSeriesReconciles(t *testing.T) {
	stored := []model.ChartPoint{
		{Date: "2024-01-01", Calories: 500}, // outside window
		{Date: "2024-01-15", Calories: 150},
		{Date: "2024-01-10", Calories: 420},
	}

	points := FromSeries(week, stored)

	assert.Len(t, points, 7)
	assert.Equal(t, "2024-01-09", points[0].Date)
	assert.Equal(t, "2024-01-15", points[6].Date)
	assert.Equal(t, []int{0, 420, 0, 0, 0, 0, 150}, calories(points))
}

func TestFromSeriesEmpty(t *testing.T) {
	points := FromSeries(week, nil)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, calories(points))
}

func TestAddToSeries(t *testing.T) {
	series := []model.ChartPoint{{Date: "2024-01-14", Calories: 10}}

	series = AddToSeries(series, "2024-01-14", 5)
	assert.Equal(t, 15, series[0].Calories)

	series = AddToSeries(series, "2024-01-15", 200)
	assert.Len(t, series, 2)
	assert.Equal(t, model.ChartPoint{Date: "2024-01-15", Calories: 200}, series[1])
}
