package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/fittrack/internal/backup"
)

type SnapshotHandler struct {
	manager    *backup.Manager
	passphrase string
	logger     *slog.Logger
}

// NewSnapshotHandler serves the snapshot endpoints. passphrase is used when
// a request does not carry its own.
func NewSnapshotHandler(manager *backup.Manager, passphrase string, logger *slog.Logger) *SnapshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotHandler{manager: manager, passphrase: passphrase, logger: logger}
}

type snapshotRequest struct {
	Passphrase string `json:"passphrase" validate:"omitempty,min=8"`
}

func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	passphrase := req.Passphrase
	if passphrase == "" {
		passphrase = h.passphrase
	}
	if passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	snap, err := h.manager.RunNow(r.Context(), passphrase)
	if err != nil {
		if errors.Is(err, backup.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("snapshot failed", "error", err)
		writeError(w, http.StatusBadGateway, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	snaps, err := h.manager.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    h.manager.Status(),
		"snapshots": snaps,
	})
}
