package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/model"
)

const chartWidth = 30

func renderState(st datastore.State) string {
	var b strings.Builder

	label := st.DateLabel
	if !st.IsToday {
		label += " " + Silent("("+st.SelectedDate+")")
	}
	b.WriteString(headerStyle.Render(label) + "\n")

	c := st.Checkin
	if c == nil {
		b.WriteString(Silent("  no check-in") + "\n")
		return b.String()
	}

	sleep := "-"
	if c.SleepHours != nil {
		sleep = strconv.FormatFloat(*c.SleepHours, 'f', -1, 64) + " h"
	}
	fmt.Fprintf(&b, "  %-10s %s\n", "Water", Info(fmt.Sprintf("%d ml", c.WaterIntakeML)))
	fmt.Fprintf(&b, "  %-10s %s\n", "Sleep", Info(sleep))
	fmt.Fprintf(&b, "  %-10s %s\n", "Eaten", Primary(fmt.Sprintf("%d kcal", c.TotalCaloriesConsumed)))
	for _, s := range st.Meals.NonZero() {
		fmt.Fprintf(&b, "    %-10s %d kcal\n", s.Type, s.Calories)
	}
	fmt.Fprintf(&b, "  %-10s %s\n", "Burned", Primary(fmt.Sprintf("%d kcal", c.TotalCaloriesBurned())))
	for _, a := range c.Activities {
		fmt.Fprintf(&b, "    %-10s %d min  %d kcal\n", a.ActivityType, a.DurationMinutes, a.CaloriesBurned)
	}
	return b.String()
}

// renderChart draws one horizontal bar per day, scaled to the busiest day.
func renderChart(points []model.ChartPoint) string {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Calories)
	}

	var b strings.Builder
	for _, p := range points {
		label := p.Date
		if t, err := dateindex.Parse(p.Date); err == nil {
			label = t.Format("Mon 01/02")
		}
		width := 0
		if peak > 0 {
			width = p.Calories * chartWidth / peak
		}
		bar := barStyle.Render(strings.Repeat("█", width))
		fmt.Fprintf(&b, "%s %s %s\n", Silent(label), bar, strconv.Itoa(p.Calories))
	}
	return b.String()
}

func renderSnapshot(s model.Snapshot) string {
	status := string(s.Status)
	switch s.Status {
	case model.SnapshotCompleted:
		status = Info(status)
	case model.SnapshotFailed:
		status = Error(status)
	}
	line := fmt.Sprintf("%s  %s  %s  %d bytes", Silent(s.ID), s.CreatedAt.Format("2006-01-02 15:04"), status, s.SizeBytes)
	if s.ErrorMessage != "" {
		line += "  " + Error(s.ErrorMessage)
	}
	return line
}
