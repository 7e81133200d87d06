// Package datastore is the single entry point for check-in screens. A Store
// holds one user's selected date and the materialized state for it, and
// routes every read and mutation to the Backend chosen at startup.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/model"
)

// State is a snapshot of everything a dashboard renders for one user.
type State struct {
	UserID       string             `json:"user_id"`
	SelectedDate string             `json:"selected_date"`
	DateLabel    string             `json:"date_label"`
	IsToday      bool               `json:"is_today"`
	Checkin      *model.Checkin     `json:"checkin"`
	Meals        model.MealSlots    `json:"meals"`
	Chart        []model.ChartPoint `json:"chart"`
	Profile      *model.Profile     `json:"profile"`
	Goal         *model.Goal        `json:"goal"`
}

type Store struct {
	userID  string
	backend Backend
	dates   *dateindex.Index
	logger  *slog.Logger

	// ops serializes calls so only one mutation per user is in flight.
	ops sync.Mutex

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func New(userID string, backend Backend, dates *dateindex.Index, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	today := dates.Today()
	return &Store{
		userID:  userID,
		backend: backend,
		dates:   dates,
		logger:  logger.With("component", "datastore", "user_id", userID),
		state: State{
			UserID:       userID,
			SelectedDate: today,
			DateLabel:    dates.DisplayLabel(today),
			IsToday:      true,
			Chart:        []model.ChartPoint{},
		},
		subs: make(map[int]func(State)),
	}
}

// Current returns the latest state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called with every new state. fn runs on the
// goroutine that made the change and must not call mutating methods.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SelectDate moves the selection to date and loads its checkin, creating it
// if needed. Future dates are refused.
func (s *Store) SelectDate(ctx context.Context, date string) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.selectDate(ctx, date)
}

// PreviousDay selects the day before the current selection.
func (s *Store) PreviousDay(ctx context.Context) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	prev, err := dateindex.PreviousDay(s.Current().SelectedDate)
	if err != nil {
		return s.Current(), fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return s.selectDate(ctx, prev)
}

// NextDay selects the day after the current selection. It does nothing when
// today is already selected.
func (s *Store) NextDay(ctx context.Context) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	cur := s.Current().SelectedDate
	if cur >= s.dates.Today() {
		return s.Current(), nil
	}
	next, err := dateindex.NextDay(cur)
	if err != nil {
		return s.Current(), fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return s.selectDate(ctx, next)
}

func (s *Store) selectDate(ctx context.Context, date string) (State, error) {
	if !dateindex.Valid(date) {
		return s.Current(), ErrInvalidDate
	}
	if s.dates.IsFuture(date) {
		return s.Current(), ErrFutureDate
	}

	c, err := s.backend.Checkin(ctx, date)
	if err != nil {
		return s.Current(), s.fail("load checkin", date, err)
	}
	return s.publish(func(st *State) {
		st.SelectedDate = date
		s.setCheckin(st, c)
	}), nil
}

// Load fetches the checkin for the selected date, creating it if needed.
func (s *Store) Load(ctx context.Context) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.selectDate(ctx, s.workingDate())
}

// Refresh reloads the checkin, chart, profile and goal.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.refresh(ctx)
}

func (s *Store) refresh(ctx context.Context) (State, error) {
	date := s.workingDate()

	c, err := s.backend.Checkin(ctx, date)
	if err != nil {
		return s.Current(), s.fail("load checkin", date, err)
	}
	series, err := s.backend.ChartSeries(ctx)
	if err != nil {
		return s.Current(), s.fail("load chart", date, err)
	}
	profile, err := s.backend.Profile(ctx)
	if err != nil {
		return s.Current(), s.fail("load profile", date, err)
	}
	goal, err := s.backend.Goal(ctx)
	if err != nil {
		return s.Current(), s.fail("load goal", date, err)
	}

	return s.publish(func(st *State) {
		s.setCheckin(st, c)
		st.Chart = series
		st.Profile = profile
		st.Goal = goal
	}), nil
}

func (s *Store) AddWater(ctx context.Context, deltaML int) (State, error) {
	return s.mutate(ctx, "add water", func(date string) (*model.Checkin, error) {
		return s.backend.AddWater(ctx, date, deltaML)
	})
}

func (s *Store) UpdateSleep(ctx context.Context, hours float64) (State, error) {
	return s.mutate(ctx, "update sleep", func(date string) (*model.Checkin, error) {
		return s.backend.UpdateSleep(ctx, date, hours)
	})
}

// SaveMeals replaces all four meal slots for the selected date.
func (s *Store) SaveMeals(ctx context.Context, slots model.MealSlots) (State, error) {
	return s.mutate(ctx, "save meals", func(date string) (*model.Checkin, error) {
		return s.backend.SaveMeals(ctx, date, slots)
	})
}

// AddActivity logs an activity on the selected date and reloads the chart.
func (s *Store) AddActivity(ctx context.Context, entry model.ActivityEntry) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	date := s.workingDate()
	c, err := s.backend.AddActivity(ctx, date, entry)
	if err != nil {
		return s.Current(), s.fail("add activity", date, err)
	}
	st := s.publish(func(st *State) { s.setCheckin(st, c) })

	series, err := s.backend.ChartSeries(ctx)
	if err != nil {
		return st, s.fail("load chart", date, err)
	}
	return s.publish(func(st *State) { st.Chart = series }), nil
}

// ChartSeries reloads the seven-day burn series ending today.
func (s *Store) ChartSeries(ctx context.Context) ([]model.ChartPoint, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	series, err := s.backend.ChartSeries(ctx)
	if err != nil {
		return s.Current().Chart, s.fail("load chart", s.dates.Today(), err)
	}
	s.publish(func(st *State) { st.Chart = series })
	return series, nil
}

func (s *Store) SaveProfile(ctx context.Context, p model.Profile) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	saved, err := s.backend.SaveProfile(ctx, p)
	if err != nil {
		return s.Current(), s.fail("save profile", "", err)
	}
	return s.publish(func(st *State) { st.Profile = saved }), nil
}

func (s *Store) SaveGoal(ctx context.Context, g model.Goal) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	saved, err := s.backend.SaveGoal(ctx, g)
	if err != nil {
		return s.Current(), s.fail("save goal", "", err)
	}
	return s.publish(func(st *State) { st.Goal = saved }), nil
}

// Reset wipes the offline dataset, selects today and reloads everything.
func (s *Store) Reset(ctx context.Context) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	if err := s.backend.Reset(ctx); err != nil {
		return s.Current(), s.fail("reset", "", err)
	}
	s.publish(func(st *State) { st.SelectedDate = s.dates.Today() })
	return s.refresh(ctx)
}

func (s *Store) mutate(ctx context.Context, op string, fn func(date string) (*model.Checkin, error)) (State, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	date := s.workingDate()
	c, err := fn(date)
	if err != nil {
		return s.Current(), s.fail(op, date, err)
	}
	return s.publish(func(st *State) { s.setCheckin(st, c) }), nil
}

// todayOnly is implemented by backends that hold nothing but the current day.
type todayOnly interface {
	TodayOnly() bool
}

// workingDate is the date Load, Refresh and mutations act on. For a
// today-only backend it follows the clock, so a selection made before
// midnight lands on the new day.
func (s *Store) workingDate() string {
	if b, ok := s.backend.(todayOnly); ok && b.TodayOnly() {
		return s.dates.Today()
	}
	return s.Current().SelectedDate
}

func (s *Store) setCheckin(st *State, c *model.Checkin) {
	st.Checkin = c
	st.Meals = c.Meals
	st.SelectedDate = c.Date
}

// publish applies update to a copy of the state, stores it, then hands the
// new state to every subscriber.
func (s *Store) publish(update func(*State)) State {
	s.mu.Lock()
	next := s.state
	update(&next)
	next.DateLabel = s.dates.DisplayLabel(next.SelectedDate)
	next.IsToday = next.SelectedDate == s.dates.Today()
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// fail passes caller-facing errors through and turns everything else into
// a logged ErrNoData.
func (s *Store) fail(op, date string, err error) error {
	switch {
	case errors.Is(err, ErrDateUnavailable),
		errors.Is(err, ErrFutureDate),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrResetUnsupported):
		return err
	}
	s.logger.Error(op+" failed", "date", date, "error", err)
	return fmt.Errorf("%s: %w", op, ErrNoData)
}
