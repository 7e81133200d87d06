package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/model"
)

type ProfileHandler struct {
	users
}

func NewProfileHandler(registry *datastore.Registry, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{newUsers(registry, logger)}
}

type onboardingRequest struct {
	Profile model.Profile `json:"profile"`
	Goal    model.Goal    `json:"goal"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	st, ok := h.refreshed(w, r)
	if !ok {
		return
	}
	if st.Profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, st.Profile)
}

func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req model.Profile
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.SaveProfile(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Profile)
}

func (h *ProfileHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	st, ok := h.refreshed(w, r)
	if !ok {
		return
	}
	if st.Goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, st.Goal)
}

// PutGoal replaces the active goal.
func (h *ProfileHandler) PutGoal(w http.ResponseWriter, r *http.Request) {
	var req model.Goal
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.SaveGoal(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Goal)
}

// Onboarding validates the profile and goal together and saves both. Nothing
// is written if either part is invalid.
func (h *ProfileHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	if _, err := s.SaveProfile(r.Context(), req.Profile); err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := s.SaveGoal(r.Context(), req.Goal)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *ProfileHandler) refreshed(w http.ResponseWriter, r *http.Request) (datastore.State, bool) {
	s, ok := h.store(w, r)
	if !ok {
		return datastore.State{}, false
	}
	st, err := s.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return st, false
	}
	return st, true
}
