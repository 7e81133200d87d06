// Package dateindex produces calendar date strings (YYYY-MM-DD) relative to
// the local wall clock. Nothing here reads stored state.
package dateindex

import (
	"fmt"
	"time"
)

// Layout is the date format used for every check-in key.
const Layout = "2006-01-02"

// Index answers "what day is it" questions against a clock and a location.
type Index struct {
	now func() time.Time
	loc *time.Location
}

// New returns an Index using now as the clock. A nil now means time.Now and
// a nil loc means time.Local.
func New(now func() time.Time, loc *time.Location) *Index {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Index{now: now, loc: loc}
}

// Today returns the current local date.
func (ix *Index) Today() string {
	return ix.now().In(ix.loc).Format(Layout)
}

// LastNDays returns n consecutive dates ending at Today, oldest first.
func (ix *Index) LastNDays(n int) []string {
	if n <= 0 {
		return []string{}
	}
	today, _ := Parse(ix.Today())
	dates := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format(Layout))
	}
	return dates
}

// DisplayLabel returns "Today" for the current date and "Jan 2 · Mon" for
// any other valid date. Unparseable input is returned as is.
func (ix *Index) DisplayLabel(d string) string {
	if d == ix.Today() {
		return "Today"
	}
	t, err := Parse(d)
	if err != nil {
		return d
	}
	return t.Format("Jan 2") + " · " + t.Format("Mon")
}

// IsFuture reports whether d is after Today.
func (ix *Index) IsFuture(d string) bool {
	return d > ix.Today()
}

// Parse parses a YYYY-MM-DD string as midnight UTC. Date arithmetic runs in
// UTC so daylight-saving transitions never skip or repeat a day.
func Parse(d string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, d, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", d, err)
	}
	return t, nil
}

// Valid reports whether d is a well-formed calendar date.
func Valid(d string) bool {
	_, err := Parse(d)
	return err == nil
}

// PreviousDay returns the calendar date before d.
func PreviousDay(d string) (string, error) {
	return shift(d, -1)
}

// NextDay returns the calendar date after d. Callers keep the result from
// passing today.
func NextDay(d string) (string, error) {
	return shift(d, 1)
}

func shift(d string, days int) (string, error) {
	t, err := Parse(d)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(Layout), nil
}
