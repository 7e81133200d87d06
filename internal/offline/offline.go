// Package offline keeps a single-user demo dataset in a local key/value
// cache: profile, goal, one "today" checkin and a 7-day burn series. There
// is no history; a stored day that is no longer today is rolled over on the
// next read.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dukerupert/fittrack/internal/chart"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/model"
)

// KeyValue is the persistent string cache the repository writes its JSON
// blobs to.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

type Repository struct {
	kv     KeyValue
	dates  *dateindex.Index
	logger *slog.Logger
}

func New(kv KeyValue, dates *dateindex.Index, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{kv: kv, dates: dates, logger: logger.With("component", "offline")}
}

// Initialize seeds the default dataset the first time it runs. Later calls
// only roll a stale today blob over to the current date.
func (r *Repository) Initialize(ctx context.Context) error {
	_, initialized, err := r.kv.Get(ctx, KeyInitialized)
	if err != nil {
		return fmt.Errorf("read init marker: %w", err)
	}

	if !initialized {
		today := r.dates.Today()
		if err := r.put(ctx, KeyProfile, defaultProfile); err != nil {
			return err
		}
		if err := r.put(ctx, KeyGoal, defaultGoal); err != nil {
			return err
		}
		if err := r.put(ctx, KeyToday, defaultCheckin(today)); err != nil {
			return err
		}
		if err := r.put(ctx, KeyChart, defaultChart(r.dates.LastNDays(chart.WindowDays))); err != nil {
			return err
		}
		if err := r.kv.Set(ctx, KeyInitialized, "true"); err != nil {
			return fmt.Errorf("write init marker: %w", err)
		}
		r.logger.Info("demo data initialized", "date", today)
		return nil
	}

	_, err = r.Today(ctx)
	return err
}

// Today returns the current day's checkin, rolling the stored blob over if
// its date has passed. A missing or unreadable blob yields the default day.
func (r *Repository) Today(ctx context.Context) (*model.Checkin, error) {
	c, err := r.today(ctx)
	if err != nil {
		return nil, err
	}
	return c.toModel(), nil
}

func (r *Repository) today(ctx context.Context) (checkinBlob, error) {
	today := r.dates.Today()

	c, found, err := load[checkinBlob](ctx, r, KeyToday)
	if err != nil {
		return checkinBlob{}, err
	}
	if !found {
		return defaultCheckin(today), nil
	}

	if c.Date != today {
		r.logger.Info("rolling over today", "from", c.Date, "to", today)
		c = rolledOver(today)
		if err := r.put(ctx, KeyToday, c); err != nil {
			return checkinBlob{}, err
		}
	}
	if c.Activities == nil {
		c.Activities = []activityBlob{}
	}
	return c, nil
}

// save stamps the blob with today's date and re-derives the consumed total
// from the four slots before writing it.
func (r *Repository) save(ctx context.Context, c checkinBlob) (*model.Checkin, error) {
	c.Date = r.dates.Today()
	c.TotalCaloriesConsumed = c.slots().Total()
	if err := r.put(ctx, KeyToday, c); err != nil {
		return nil, err
	}
	return c.toModel(), nil
}

func (r *Repository) AddWater(ctx context.Context, deltaML int) (*model.Checkin, error) {
	c, err := r.today(ctx)
	if err != nil {
		return nil, err
	}
	c.WaterIntakeML += deltaML
	return r.save(ctx, c)
}

func (r *Repository) UpdateSleep(ctx context.Context, hours float64) (*model.Checkin, error) {
	c, err := r.today(ctx)
	if err != nil {
		return nil, err
	}
	c.SleepHours = hours
	return r.save(ctx, c)
}

func (r *Repository) UpdateMeals(ctx context.Context, slots model.MealSlots) (*model.Checkin, error) {
	c, err := r.today(ctx)
	if err != nil {
		return nil, err
	}
	c.setSlots(slots)
	return r.save(ctx, c)
}

// AddActivity appends to today's list and adds the calories to today's
// entry in the stored chart series.
func (r *Repository) AddActivity(ctx context.Context, entry model.ActivityEntry) (*model.Checkin, error) {
	c, err := r.today(ctx)
	if err != nil {
		return nil, err
	}
	c.Activities = append(c.Activities, activityBlob{
		Type:     entry.Type,
		Duration: entry.DurationMinutes,
		Calories: entry.Calories,
	})
	saved, err := r.save(ctx, c)
	if err != nil {
		return nil, err
	}

	series, err := r.ChartSeries(ctx)
	if err != nil {
		return nil, err
	}
	series = chart.AddToSeries(series, r.dates.Today(), entry.Calories)
	if err := r.put(ctx, KeyChart, chartFromModel(series)); err != nil {
		return nil, err
	}
	return saved, nil
}

// ChartSeries returns the stored series reconciled to the last seven days.
func (r *Repository) ChartSeries(ctx context.Context) ([]model.ChartPoint, error) {
	dates := r.dates.LastNDays(chart.WindowDays)

	stored, found, err := load[[]chartBlob](ctx, r, KeyChart)
	if err != nil {
		return nil, err
	}
	if !found {
		return chartToModel(defaultChart(dates)), nil
	}
	return chart.FromSeries(dates, chartToModel(stored)), nil
}

// Reset removes every stored key and seeds the defaults again.
func (r *Repository) Reset(ctx context.Context) error {
	if err := r.kv.Remove(ctx, allKeys...); err != nil {
		return fmt.Errorf("reset offline data: %w", err)
	}
	return r.Initialize(ctx)
}

func (r *Repository) Profile(ctx context.Context) (*model.Profile, error) {
	p, found, err := load[profileBlob](ctx, r, KeyProfile)
	if err != nil {
		return nil, err
	}
	if !found {
		p = defaultProfile
	}
	return p.toModel(), nil
}

func (r *Repository) SaveProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	b := profileFromModel(p)
	if err := r.put(ctx, KeyProfile, b); err != nil {
		return nil, err
	}
	return b.toModel(), nil
}

func (r *Repository) Goal(ctx context.Context) (*model.Goal, error) {
	g, found, err := load[goalBlob](ctx, r, KeyGoal)
	if err != nil {
		return nil, err
	}
	if !found {
		g = defaultGoal
	}
	return g.toModel(), nil
}

func (r *Repository) SaveGoal(ctx context.Context, g model.Goal) (*model.Goal, error) {
	b := goalFromModel(g)
	if err := r.put(ctx, KeyGoal, b); err != nil {
		return nil, err
	}
	return b.toModel(), nil
}

// load decodes the blob stored under key. It reports false when the key is
// absent or the stored value does not parse, so the caller falls back to its
// default.
func load[T any](ctx context.Context, r *Repository, key string) (T, bool, error) {
	var v T
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		r.logger.Warn("discarding unreadable blob", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

func (r *Repository) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
