package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/fittrack/internal/cache"
	"github.com/dukerupert/fittrack/internal/config"
	"github.com/dukerupert/fittrack/internal/database"
	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/handler"
	"github.com/dukerupert/fittrack/internal/logging"
	"github.com/dukerupert/fittrack/internal/offline"
	"github.com/dukerupert/fittrack/internal/store"
)

const (
	modeRemote  = "remote"
	modeOffline = "offline"
)

// app holds what every command needs: the open database and a backend
// factory for the configured mode.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	dates   *dateindex.Index
	factory datastore.BackendFactory
	mode    string
	cache   handler.StatusReporter
	redis   *cache.RedisKV
	logger  *slog.Logger
}

// loadConfig is swapped in tests.
var loadConfig = config.Load

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{
		cfg:    cfg,
		db:     db,
		dates:  dateindex.New(time.Now, cfg.Location),
		mode:   modeRemote,
		logger: logger,
	}

	if !cfg.OfflineDemo {
		a.factory = datastore.RemoteFactory(store.NewCheckinStore(db), store.NewProfileStore(db), store.NewGoalStore(db), a.dates)
		return a, nil
	}

	a.mode = modeOffline
	var kv offline.KeyValue = store.NewKVStore(db)
	if cfg.CacheBackend == config.CacheRedis {
		a.redis, err = cache.NewRedisKV(ctx, cfg.RedisURL, "fittrack")
		if err != nil {
			db.Close()
			return nil, err
		}
		kv = a.redis
		a.cache = a.redis
	}
	a.factory = datastore.OfflineFactory(kv, a.dates, logger.With("component", "offline"))
	return a, nil
}

func (a *app) Close() error {
	if a.redis != nil {
		a.redis.Close()
	}
	return a.db.Close()
}

// defaultUser is the identity used when none is given: offline mode always
// has the demo user.
func (a *app) defaultUser() string {
	if a.mode == modeOffline {
		return "demo"
	}
	return ""
}

// userStore builds a one-off data store for userID with date selected.
func (a *app) userStore(ctx context.Context, userID, date string) (*datastore.Store, error) {
	if userID == "" {
		userID = a.defaultUser()
	}
	if userID == "" {
		return nil, fmt.Errorf("--user is required")
	}
	backend, err := a.factory(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := datastore.New(userID, backend, a.dates, a.logger.With("component", "datastore"))
	if date != "" {
		if _, err := s.SelectDate(ctx, date); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// withUserStore opens the app, resolves the user's data store and runs fn.
func withUserStore(ctx context.Context, userID, date string, fn func(*datastore.Store) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.userStore(ctx, userID, date)
	if err != nil {
		return err
	}
	return fn(s)
}
