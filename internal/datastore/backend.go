package datastore

import (
	"context"
	"log/slog"

	"github.com/dukerupert/fittrack/internal/chart"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/model"
	"github.com/dukerupert/fittrack/internal/offline"
	"github.com/dukerupert/fittrack/internal/store"
)

// Backend is one user's view of a persistence mode. Checkin is
// get-or-create: it never returns a nil checkin without an error.
type Backend interface {
	Checkin(ctx context.Context, date string) (*model.Checkin, error)
	AddWater(ctx context.Context, date string, deltaML int) (*model.Checkin, error)
	UpdateSleep(ctx context.Context, date string, hours float64) (*model.Checkin, error)
	SaveMeals(ctx context.Context, date string, slots model.MealSlots) (*model.Checkin, error)
	AddActivity(ctx context.Context, date string, entry model.ActivityEntry) (*model.Checkin, error)
	ChartSeries(ctx context.Context) ([]model.ChartPoint, error)
	Profile(ctx context.Context) (*model.Profile, error)
	SaveProfile(ctx context.Context, p model.Profile) (*model.Profile, error)
	Goal(ctx context.Context) (*model.Goal, error)
	SaveGoal(ctx context.Context, g model.Goal) (*model.Goal, error)
	Reset(ctx context.Context) error
}

// Remote serves a user from the relational stores.
type Remote struct {
	userID   string
	checkins *store.CheckinStore
	profiles *store.ProfileStore
	goals    *store.GoalStore
	dates    *dateindex.Index
}

func NewRemote(userID string, checkins *store.CheckinStore, profiles *store.ProfileStore, goals *store.GoalStore, dates *dateindex.Index) *Remote {
	return &Remote{userID: userID, checkins: checkins, profiles: profiles, goals: goals, dates: dates}
}

func (r *Remote) Checkin(ctx context.Context, date string) (*model.Checkin, error) {
	return r.checkins.GetOrCreate(ctx, r.userID, date)
}

func (r *Remote) AddWater(ctx context.Context, date string, deltaML int) (*model.Checkin, error) {
	return r.checkins.UpdateWater(ctx, r.userID, date, deltaML)
}

func (r *Remote) UpdateSleep(ctx context.Context, date string, hours float64) (*model.Checkin, error) {
	return r.checkins.UpdateSleep(ctx, r.userID, date, hours)
}

func (r *Remote) SaveMeals(ctx context.Context, date string, slots model.MealSlots) (*model.Checkin, error) {
	return r.checkins.SaveMeals(ctx, r.userID, date, slots)
}

func (r *Remote) AddActivity(ctx context.Context, date string, entry model.ActivityEntry) (*model.Checkin, error) {
	return r.checkins.AddActivity(ctx, r.userID, date, entry)
}

func (r *Remote) ChartSeries(ctx context.Context) ([]model.ChartPoint, error) {
	return r.checkins.ChartSeries(ctx, r.userID, r.dates.LastNDays(chart.WindowDays))
}

func (r *Remote) Profile(ctx context.Context) (*model.Profile, error) {
	return r.profiles.Get(ctx, r.userID)
}

func (r *Remote) SaveProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	p.UserID = r.userID
	return r.profiles.Upsert(ctx, p)
}

func (r *Remote) Goal(ctx context.Context) (*model.Goal, error) {
	return r.goals.GetActive(ctx, r.userID)
}

func (r *Remote) SaveGoal(ctx context.Context, g model.Goal) (*model.Goal, error) {
	g.UserID = r.userID
	return r.goals.Replace(ctx, g)
}

func (r *Remote) Reset(ctx context.Context) error {
	return ErrResetUnsupported
}

// Offline serves a user from the offline demo cache. Only today's date is
// addressable.
type Offline struct {
	userID string
	repo   *offline.Repository
	dates  *dateindex.Index
}

// NewOffline initializes repo (seeding defaults on first use) and wraps it.
func NewOffline(ctx context.Context, userID string, repo *offline.Repository, dates *dateindex.Index) (*Offline, error) {
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return &Offline{userID: userID, repo: repo, dates: dates}, nil
}

// TodayOnly reports that the offline dataset has no past days.
func (o *Offline) TodayOnly() bool { return true }

func (o *Offline) checkDate(date string) error {
	if date != o.dates.Today() {
		return ErrDateUnavailable
	}
	return nil
}

func (o *Offline) own(c *model.Checkin, err error) (*model.Checkin, error) {
	if err != nil {
		return nil, err
	}
	c.UserID = o.userID
	return c, nil
}

func (o *Offline) Checkin(ctx context.Context, date string) (*model.Checkin, error) {
	if err := o.checkDate(date); err != nil {
		return nil, err
	}
	return o.own(o.repo.Today(ctx))
}

func (o *Offline) AddWater(ctx context.Context, date string, deltaML int) (*model.Checkin, error) {
	if err := o.checkDate(date); err != nil {
		return nil, err
	}
	return o.own(o.repo.AddWater(ctx, deltaML))
}

func (o *Offline) UpdateSleep(ctx context.Context, date string, hours float64) (*model.Checkin, error) {
	if err := o.checkDate(date); err != nil {
		return nil, err
	}
	return o.own(o.repo.UpdateSleep(ctx, hours))
}

func (o *Offline) SaveMeals(ctx context.Context, date string, slots model.MealSlots) (*model.Checkin, error) {
	if err := o.checkDate(date); err != nil {
		return nil, err
	}
	return o.own(o.repo.UpdateMeals(ctx, slots))
}

func (o *Offline) AddActivity(ctx context.Context, date string, entry model.ActivityEntry) (*model.Checkin, error) {
	if err := o.checkDate(date); err != nil {
		return nil, err
	}
	return o.own(o.repo.AddActivity(ctx, entry))
}

func (o *Offline) ChartSeries(ctx context.Context) ([]model.ChartPoint, error) {
	return o.repo.ChartSeries(ctx)
}

func (o *Offline) Profile(ctx context.Context) (*model.Profile, error) {
	p, err := o.repo.Profile(ctx)
	if err != nil {
		return nil, err
	}
	p.UserID = o.userID
	return p, nil
}

func (o *Offline) SaveProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	saved, err := o.repo.SaveProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	saved.UserID = o.userID
	return saved, nil
}

func (o *Offline) Goal(ctx context.Context) (*model.Goal, error) {
	g, err := o.repo.Goal(ctx)
	if err != nil {
		return nil, err
	}
	g.UserID = o.userID
	return g, nil
}

func (o *Offline) SaveGoal(ctx context.Context, g model.Goal) (*model.Goal, error) {
	saved, err := o.repo.SaveGoal(ctx, g)
	if err != nil {
		return nil, err
	}
	saved.UserID = o.userID
	return saved, nil
}

func (o *Offline) Reset(ctx context.Context) error {
	return o.repo.Reset(ctx)
}

// RemoteFactory builds Remote backends over shared stores.
func RemoteFactory(checkins *store.CheckinStore, profiles *store.ProfileStore, goals *store.GoalStore, dates *dateindex.Index) BackendFactory {
	return func(ctx context.Context, userID string) (Backend, error) {
		return NewRemote(userID, checkins, profiles, goals, dates), nil
	}
}

// OfflineFactory builds Offline backends that keep each user's demo data
// under its own key namespace in kv.
func OfflineFactory(kv offline.KeyValue, dates *dateindex.Index, logger *slog.Logger) BackendFactory {
	return func(ctx context.Context, userID string) (Backend, error) {
		repo := offline.New(offline.Namespace(kv, userID), dates, logger)
		return NewOffline(ctx, userID, repo, dates)
	}
}
