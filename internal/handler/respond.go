package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fittrack/internal/auth"
	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if fields := validate.Struct(v); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

// statusFor maps data layer errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, datastore.ErrFutureDate), errors.Is(err, datastore.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, datastore.ErrDateUnavailable), errors.Is(err, datastore.ErrResetUnsupported):
		return http.StatusConflict
	case errors.Is(err, datastore.ErrNoData):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// users resolves the per-user data store for a request.
type users struct {
	registry *datastore.Registry
	logger   *slog.Logger
}

func newUsers(registry *datastore.Registry, logger *slog.Logger) users {
	if logger == nil {
		logger = slog.Default()
	}
	return users{registry: registry, logger: logger}
}

func (u users) store(w http.ResponseWriter, r *http.Request) (*datastore.Store, bool) {
	s, err := u.registry.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		u.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func (u users) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		u.logger.Error("request failed", "path", r.URL.Path, "user_id", auth.UserID(r.Context()), "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
