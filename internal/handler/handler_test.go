package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/fittrack/internal/auth"
	"github.com/dukerupert/fittrack/internal/backup"
	"github.com/dukerupert/fittrack/internal/database"
	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/dateindex"
	"github.com/dukerupert/fittrack/internal/store"
)

type env struct {
	db       *sql.DB
	registry *datastore.Registry
	checkins *CheckinHandler
	profiles *ProfileHandler
}

func setup(t *testing.T, offlineMode bool) *env {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	dates := dateindex.New(func() time.Time { return now }, time.UTC)

	factory := datastore.RemoteFactory(store.NewCheckinStore(db), store.NewProfileStore(db), store.NewGoalStore(db), dates)
	if offlineMode {
		factory = datastore.OfflineFactory(store.NewKVStore(db), dates, nil)
	}
	registry := datastore.NewRegistry(factory, dates, nil)

	return &env{
		db:       db,
		registry: registry,
		checkins: NewCheckinHandler(registry, nil),
		profiles: NewProfileHandler(registry, nil),
	}
}

func call(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1"}))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) datastore.State {
	t.Helper()
	var st datastore.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return st
}

func TestGetCheckinCreatesToday(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.checkins.Get, "GET", "/api/checkin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	st := decodeState(t, rec)
	assert.Equal(t, "2024-01-15", st.SelectedDate)
	assert.True(t, st.IsToday)
	require.NotNil(t, st.Checkin)
	assert.Equal(t, 0, st.Checkin.WaterIntakeML)
}

func TestGetCheckinDateErrors(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.checkins.Get, "GET", "/api/checkin?date=2024-01-16", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e.checkins.Get, "GET", "/api/checkin?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaterSleepMeals(t *testing.T) {
	e := setup(t, false)

	call(t, e.checkins.AddWater, "POST", "/api/checkin/water", map[string]int{"amount_ml": 250})
	rec := call(t, e.checkins.AddWater, "POST", "/api/checkin/water", map[string]int{"amount_ml": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 750, decodeState(t, rec).Checkin.WaterIntakeML)

	rec = call(t, e.checkins.UpdateSleep, "PUT", "/api/checkin/sleep", map[string]float64{"hours": 7.5})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	require.NotNil(t, st.Checkin.SleepHours)
	assert.Equal(t, 7.5, *st.Checkin.SleepHours)

	rec = call(t, e.checkins.SaveMeals, "PUT", "/api/checkin/meals",
		map[string]int{"breakfast": 300, "lunch": 600, "dinner": 0, "snacks": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	st = decodeState(t, rec)
	assert.Equal(t, 900, st.Checkin.TotalCaloriesConsumed)
	assert.Equal(t, 600, st.Meals.Lunch)
}

func TestValidationErrors(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.checkins.AddWater, "POST", "/api/checkin/water", map[string]int{"amount_ml": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = call(t, e.checkins.AddActivity, "POST", "/api/checkin/activities",
		map[string]any{"type": "juggling", "duration_minutes": 0, "calories": 10})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "type")
	assert.Contains(t, body.Fields, "duration_minutes")

	rec = call(t, e.checkins.SaveMeals, "PUT", "/api/checkin/meals", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityAndChart(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.checkins.AddActivity, "POST", "/api/checkin/activities",
		map[string]any{"type": "run", "duration_minutes": 30, "calories": 150})
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decodeState(t, rec)
	require.Len(t, st.Chart, 7)
	assert.Equal(t, 150, st.Chart[6].Calories)

	rec = call(t, e.checkins.Chart, "GET", "/api/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var series []struct {
		Date     string `json:"date"`
		Calories int    `json:"calories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, 7)
	assert.Equal(t, "2024-01-09", series[0].Date)
	assert.Equal(t, "2024-01-15", series[6].Date)
	assert.Equal(t, 150, series[6].Calories)
}

func TestNavigation(t *testing.T) {
	e := setup(t, false)
	call(t, e.checkins.Get, "GET", "/api/checkin", nil)

	rec := call(t, e.checkins.Previous, "POST", "/api/checkin/previous", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-14", decodeState(t, rec).SelectedDate)

	call(t, e.checkins.Next, "POST", "/api/checkin/next", nil)
	rec = call(t, e.checkins.Next, "POST", "/api/checkin/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-15", decodeState(t, rec).SelectedDate)
}

func TestResetRemoteConflict(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.checkins.Reset, "POST", "/api/offline/reset", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOfflineMode(t *testing.T) {
	e := setup(t, true)

	rec := call(t, e.checkins.AddWater, "POST", "/api/checkin/water", map[string]int{"amount_ml": 250})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1000, decodeState(t, rec).Checkin.WaterIntakeML)

	rec = call(t, e.checkins.Get, "GET", "/api/checkin?date=2024-01-10", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, e.checkins.Reset, "POST", "/api/offline/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 750, decodeState(t, rec).Checkin.WaterIntakeML)
}

func TestOnboarding(t *testing.T) {
	e := setup(t, false)

	rec := call(t, e.profiles.GetProfile, "GET", "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bad := map[string]any{
		"profile": map[string]any{"height_cm": 20, "current_weight_kg": 70, "activity_level": "moderate"},
		"goal":    map[string]any{"target_weight_kg": 65, "daily_calorie_target": 2000, "daily_water_goal_ml": 2500, "sleep_goal_hours": 30},
	}
	rec = call(t, e.profiles.Onboarding, "POST", "/api/onboarding", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "must be at least 50", body.Fields["profile.height_cm"])
	assert.Equal(t, "must be at most 24", body.Fields["goal.sleep_goal_hours"])

	rec = call(t, e.profiles.GetProfile, "GET", "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "invalid onboarding must not write")

	good := map[string]any{
		"profile": map[string]any{"height_cm": 175, "current_weight_kg": 70, "activity_level": "moderate"},
		"goal":    map[string]any{"target_weight_kg": 65, "daily_calorie_target": 2000, "daily_water_goal_ml": 2500, "sleep_goal_hours": 8},
	}
	rec = call(t, e.profiles.Onboarding, "POST", "/api/onboarding", good)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, e.profiles.GetGoal, "GET", "/api/goal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var goal struct {
		DailyCalorieTarget int  `json:"daily_calorie_target"`
		IsActive           bool `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goal))
	assert.Equal(t, 2000, goal.DailyCalorieTarget)
	assert.True(t, goal.IsActive)

	rec = call(t, e.profiles.PutProfile, "PUT", "/api/profile",
		map[string]any{"height_cm": 180, "current_weight_kg": 72, "activity_level": "active"})
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		HeightCM int `json:"height_cm"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, 180, profile.HeightCM)
}

func TestMissingUser(t *testing.T) {
	e := setup(t, false)

	req := httptest.NewRequest("GET", "/api/checkin", nil)
	rec := httptest.NewRecorder()
	e.checkins.Get(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSnapshotHandlerDisabled(t *testing.T) {
	e := setup(t, false)
	m := backup.NewManager(backup.Config{}, e.db, store.NewSnapshotStore(e.db), nil, nil)

	h := NewSnapshotHandler(m, "", nil)
	rec := call(t, h.Create, "POST", "/api/snapshots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewSnapshotHandler(m, "configured-passphrase", nil)
	rec = call(t, h.Create, "POST", "/api/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = call(t, h.List, "GET", "/api/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status    backup.Status `json:"status"`
		Snapshots []any         `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, backup.StateDisabled, body.Status.State)
	assert.Empty(t, body.Snapshots)

	rec = call(t, h.List, "GET", "/api/snapshots?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e := setup(t, false)
	h := NewHealthHandler(e.db, nil, nil, "remote")

	rec := call(t, h.Health, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "active_users")

	e.db.Close()
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCountsActiveUsers(t *testing.T) {
	e := setup(t, true)
	h := NewHealthHandler(e.db, nil, e.registry, "offline")

	rec := call(t, e.checkins.Get, "GET", "/api/checkin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.Health, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "offline", body["mode"])
	assert.Equal(t, float64(1), body["active_users"])
}
