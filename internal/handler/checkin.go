package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/model"
)

type CheckinHandler struct {
	users
}

func NewCheckinHandler(registry *datastore.Registry, logger *slog.Logger) *CheckinHandler {
	return &CheckinHandler{newUsers(registry, logger)}
}

type waterRequest struct {
	AmountML int `json:"amount_ml" validate:"ne=0,gte=-10000,lte=10000"`
}

type sleepRequest struct {
	Hours float64 `json:"hours" validate:"gte=0,lte=24"`
}

// Get returns the state for ?date=YYYY-MM-DD, or for the current selection
// when no date is given.
func (h *CheckinHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	var (
		st  datastore.State
		err error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		st, err = s.SelectDate(r.Context(), date)
	} else {
		st, err = s.Load(r.Context())
	}
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) AddWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.AddWater(r.Context(), req.AmountML)
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) UpdateSleep(w http.ResponseWriter, r *http.Request) {
	var req sleepRequest
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.UpdateSleep(r.Context(), req.Hours)
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) SaveMeals(w http.ResponseWriter, r *http.Request) {
	var req model.MealSlots
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.SaveMeals(r.Context(), req)
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	var req model.ActivityEntry
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.AddActivity(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *CheckinHandler) Previous(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.PreviousDay(r.Context())
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.NextDay(r.Context())
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) Chart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	series, err := s.ChartSeries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// Reset wipes the offline dataset for the user. Remote mode answers 409.
func (h *CheckinHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	st, err := s.Reset(r.Context())
	h.respond(w, r, st, err)
}

func (h *CheckinHandler) respond(w http.ResponseWriter, r *http.Request, st datastore.State, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
