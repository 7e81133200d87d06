package datastore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/fittrack/internal/dateindex"
)

// BackendFactory builds the backend for one user.
type BackendFactory func(ctx context.Context, userID string) (Backend, error)

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per user id, creating it on first use.
// Stores idle past Evict's cutoff are dropped, and once maxUsers is
// reached the least recently used one makes room for a new id.
type Registry struct {
	factory BackendFactory
	dates   *dateindex.Index
	logger  *slog.Logger
	onNew   []func(*Store)
	now     func() time.Time

	mu       sync.Mutex
	stores   map[string]*registryEntry
	maxUsers int
}

// NewRegistry returns an empty registry. Each hook in onNew runs once for
// every newly created Store, before it is returned to anyone.
func NewRegistry(factory BackendFactory, dates *dateindex.Index, logger *slog.Logger, onNew ...func(*Store)) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factory: factory,
		dates:   dates,
		logger:  logger,
		onNew:   onNew,
		now:     time.Now,
		stores:  make(map[string]*registryEntry),
	}
}

// SetMaxUsers caps the number of live Stores. Zero means no cap.
func (r *Registry) SetMaxUsers(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxUsers = n
}

func (r *Registry) Get(ctx context.Context, userID string) (*Store, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.stores[userID]; ok {
		e.lastUsed = now
		return e.store, nil
	}

	backend, err := r.factory(ctx, userID)
	if err != nil {
		r.logger.Error("create backend failed", "user_id", userID, "error", err)
		return nil, ErrNoData
	}

	s := New(userID, backend, r.dates, r.logger)
	for _, fn := range r.onNew {
		fn(s)
	}
	if r.maxUsers > 0 && len(r.stores) >= r.maxUsers {
		r.evictOldest()
	}
	r.stores[userID] = &registryEntry{store: s, lastUsed: now}
	return s, nil
}

func (r *Registry) evictOldest() {
	var oldest string
	var at time.Time
	for id, e := range r.stores {
		if oldest == "" || e.lastUsed.Before(at) {
			oldest, at = id, e.lastUsed
		}
	}
	delete(r.stores, oldest)
	r.logger.Info("store evicted", "user_id", oldest, "reason", "capacity")
}

// Evict drops Stores not used within maxIdle and returns how many went.
// A later Get for the same id builds a fresh Store from the backend.
func (r *Registry) Evict(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			delete(r.stores, id)
			n++
		}
	}
	return n
}

// Users returns the ids with a live Store.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	return ids
}
