package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// StatusReporter describes a dependency for the health endpoint.
type StatusReporter interface {
	Status() map[string]any
}

// UserLister reports the users currently held in memory.
type UserLister interface {
	Users() []string
}

type HealthHandler struct {
	db    *sql.DB
	cache StatusReporter
	users UserLister
	mode  string
}

// NewHealthHandler reports database reachability. cache and users may be nil.
func NewHealthHandler(db *sql.DB, cache StatusReporter, users UserLister, mode string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, users: users, mode: mode}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{"status": "ok", "mode": h.mode}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		body["cache"] = h.cache.Status()
	}
	if h.users != nil {
		body["active_users"] = len(h.users.Users())
	}
	writeJSON(w, status, body)
}
