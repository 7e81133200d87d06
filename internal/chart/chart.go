// Package chart folds check-in activity data into the fixed-length,
// zero-filled daily series shown on the dashboard.
package chart

import "github.com/dukerupert/fittrack/internal/model"

// WindowDays is the length of the dashboard exercise chart.
const WindowDays = 7

// Dense returns one point per date, in the order given, taking the value
// from byDate and 0 for dates it does not mention.
func Dense(dates []string, byDate map[string]int) []model.ChartPoint {
	points := make([]model.ChartPoint, len(dates))
	for i, d := range dates {
		points[i] = model.ChartPoint{Date: d, Calories: byDate[d]}
	}
	return points
}

// SumByCheckin totals calories_burned per checkin id.
func SumByCheckin(activities []model.Activity) map[string]int {
	sums := make(map[string]int)
	for _, a := range activities {
		sums[a.CheckinID] += a.CaloriesBurned
	}
	return sums
}

// FromCheckins maps per-checkin activity sums onto checkin dates and
// densifies them over dates.
func FromCheckins(dates []string, checkins []model.Checkin, activities []model.Activity) []model.ChartPoint {
	sums := SumByCheckin(activities)
	byDate := make(map[string]int, len(checkins))
	for _, c := range checkins {
		byDate[c.Date] += sums[c.ID]
	}
	return Dense(dates, byDate)
}

// FromSeries reconciles a stored series against dates: entries outside the
// window are dropped and missing dates are zero-filled.
func FromSeries(dates []string, stored []model.ChartPoint) []model.ChartPoint {
	byDate := make(map[string]int, len(stored))
	for _, p := range stored {
		if _, seen := byDate[p.Date]; !seen {
			byDate[p.Date] = p.Calories
		}
	}
	return Dense(dates, byDate)
}

// AddToSeries adds calories to the entry for date, appending a new entry if
// the series has none.
func AddToSeries(series []model.ChartPoint, date string, calories int) []model.ChartPoint {
	for i := range series {
		if series[i].Date == date {
			series[i].Calories += calories
			return series
		}
	}
	return append(series, model.ChartPoint{Date: date, Calories: calories})
}
