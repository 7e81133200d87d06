package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/fittrack/internal/backup"
	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/handler"
	"github.com/dukerupert/fittrack/internal/middleware"
	"github.com/dukerupert/fittrack/internal/store"
	ws "github.com/dukerupert/fittrack/internal/websocket"
)

// Options wires a Server. Factory decides whether users are served from
// the relational store or the offline cache.
type Options struct {
	DB      *sql.DB
	Factory datastore.BackendFactory
	Dates   *dateindex.Index
	Mode    string

	// DefaultUser is used for requests without an X-User-ID header. Empty
	// means the header is required.
	DefaultUser string

	Cache     handler.StatusReporter
	Snapshot  backup.Config
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

type Server struct {
	hub           *ws.Hub
	registry      *datastore.Registry
	checkinH      *handler.CheckinHandler
	profileH      *handler.ProfileHandler
	snapshotH     *handler.SnapshotHandler
	healthH       *handler.HealthHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	defaultUser   string
	logger        *slog.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := ws.NewHub(logger.With("component", "websocket"))

	registry := datastore.NewRegistry(opts.Factory, opts.Dates, logger.With("component", "datastore"), hub.Attach)
	registry.SetMaxUsers(maxLiveUsers)

	backupMgr := backup.NewManager(opts.Snapshot, opts.DB, store.NewSnapshotStore(opts.DB), logger, func(s backup.Status) {
		hub.Broadcast(ws.NewMessage("snapshot", "status", "", s))
	})

	rps, burst := opts.RateLimit, opts.RateBurst
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}

	return &Server{
		hub:           hub,
		registry:      registry,
		checkinH:      handler.NewCheckinHandler(registry, logger.With("component", "checkin")),
		profileH:      handler.NewProfileHandler(registry, logger.With("component", "profile")),
		snapshotH:     handler.NewSnapshotHandler(backupMgr, opts.Snapshot.Passphrase, logger.With("component", "snapshot")),
		healthH:       handler.NewHealthHandler(opts.DB, opts.Cache, registry, opts.Mode),
		rateLimiter:   middleware.NewRateLimiter(rps, burst),
		backupManager: backupMgr,
		defaultUser:   opts.DefaultUser,
		logger:        logger,
	}
}

// Registry returns the per-user data stores.
func (s *Server) Registry() *datastore.Registry {
	return s.registry
}

// BackupManager returns the snapshot manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

const (
	maxLiveUsers = 10000
	storeMaxIdle = 30 * time.Minute
)

// Start launches background work: scheduled snapshots, limiter cleanup and
// eviction of idle user stores.
// It returns once they are running; cancel ctx and call Stop to end them.
func (s *Server) Start(ctx context.Context) {
	s.backupManager.Start(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.rateLimiter.Cleanup(10 * time.Minute)
				if n := s.registry.Evict(storeMaxIdle); n > 0 {
					s.logger.Info("evicted idle stores", "count", n)
				}
			}
		}
	}()
}

func (s *Server) Stop() {
	s.backupManager.Stop()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	httpLogger := s.logger.With("component", "http")

	outerMux.Handle("GET /health", middleware.RequestLogger(httpLogger)(http.HandlerFunc(s.healthH.Health)))

	apiMux := http.NewServeMux()
	s.registerRoutes(apiMux)

	var api http.Handler = apiMux
	api = middleware.RateLimit(s.rateLimiter, middleware.ClientKey)(api)
	api = middleware.RequestLogger(httpLogger)(api)
	api = middleware.RequireUser(s.defaultUser)(api)
	outerMux.Handle("/", api)

	return middleware.RequestID(outerMux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/checkin", s.checkinH.Get)
	mux.HandleFunc("POST /api/checkin/water", s.checkinH.AddWater)
	mux.HandleFunc("PUT /api/checkin/sleep", s.checkinH.UpdateSleep)
	mux.HandleFunc("PUT /api/checkin/meals", s.checkinH.SaveMeals)
	mux.HandleFunc("POST /api/checkin/activities", s.checkinH.AddActivity)
	mux.HandleFunc("POST /api/checkin/previous", s.checkinH.Previous)
	mux.HandleFunc("POST /api/checkin/next", s.checkinH.Next)
	mux.HandleFunc("GET /api/chart", s.checkinH.Chart)
	mux.HandleFunc("POST /api/offline/reset", s.checkinH.Reset)

	mux.HandleFunc("GET /api/profile", s.profileH.GetProfile)
	mux.HandleFunc("PUT /api/profile", s.profileH.PutProfile)
	mux.HandleFunc("GET /api/goal", s.profileH.GetGoal)
	mux.HandleFunc("PUT /api/goal", s.profileH.PutGoal)
	mux.HandleFunc("POST /api/onboarding", s.profileH.Onboarding)

	mux.HandleFunc("POST /api/snapshots", s.snapshotH.Create)
	mux.HandleFunc("GET /api/snapshots", s.snapshotH.List)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
