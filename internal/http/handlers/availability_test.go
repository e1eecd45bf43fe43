package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xidik12/MiyZapis-sub005/internal/availability"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

type stubAvailability struct {
	inserted    int64
	generateErr error
	blocks      []availability.Block
	listErr     error
	lastFrom    time.Time
	lastTo      time.Time
	lastCutoff  time.Time
	saved       *schedule.Specialist
}

func (s *stubAvailability) Generate(_ context.Context, _ uuid.UUID, _ int) (int64, error) {
	return s.inserted, s.generateErr
}

func (s *stubAvailability) ListOpen(_ context.Context, _ uuid.UUID, from, to time.Time, pendingCutoff time.Time) ([]availability.Block, error) {
	s.lastFrom, s.lastTo, s.lastCutoff = from, to, pendingCutoff
	return s.blocks, s.listErr
}

func (s *stubAvailability) Set(_ context.Context, sp *schedule.Specialist) error {
	s.saved = sp
	return nil
}

var handlerNow = time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

func availabilityRouter(stub *stubAvailability) http.Handler {
	h := NewAvailabilityHandler(stub, stub, stub, 4, 15*time.Minute, logging.New("error")).
		WithClock(func() time.Time { return handlerNow })
	r := chi.NewRouter()
	r.Get("/specialists/{specialistID}/availability", h.List)
	r.Post("/specialists/{specialistID}/availability/generate", h.Generate)
	r.Put("/specialists/{specialistID}/schedule", h.UpsertSchedule)
	return r
}

func TestGenerateAvailability(t *testing.T) {
	stub := &stubAvailability{inserted: 96}
	router := availabilityRouter(stub)
	specialistID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/specialists/"+specialistID.String()+"/availability/generate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, specialistID, got.SpecialistID)
	assert.Equal(t, int64(96), got.Inserted)
	assert.Equal(t, 4, got.HorizonWeeks)
}

func TestGenerateAvailabilityNoSchedule(t *testing.T) {
	router := availabilityRouter(&stubAvailability{generateErr: availability.ErrNoSchedule})

	req := httptest.NewRequest(http.MethodPost, "/specialists/"+uuid.NewString()+"/availability/generate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateAvailabilityMalformedSchedule(t *testing.T) {
	router := availabilityRouter(&stubAvailability{
		generateErr: &schedule.ScheduleParseError{Day: "monday", Reason: "start must be before end"},
	})

	req := httptest.NewRequest(http.MethodPost, "/specialists/"+uuid.NewString()+"/availability/generate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListAvailabilityDefaultsToHorizon(t *testing.T) {
	start := handlerNow.Add(2 * time.Hour)
	stub := &stubAvailability{blocks: []availability.Block{
		{ID: uuid.New(), StartAt: start, EndAt: start.Add(15 * time.Minute), Available: true},
	}}
	router := availabilityRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/specialists/"+uuid.NewString()+"/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handlerNow, stub.lastFrom)
	assert.Equal(t, handlerNow.AddDate(0, 0, 28), stub.lastTo)
	assert.Equal(t, handlerNow.Add(-15*time.Minute), stub.lastCutoff)

	var got listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Blocks, 1)
}

func TestListAvailabilityExplicitWindow(t *testing.T) {
	stub := &stubAvailability{}
	router := availabilityRouter(stub)

	req := httptest.NewRequest(http.MethodGet,
		"/specialists/"+uuid.NewString()+"/availability?from=2026-09-01T00:00:00Z&to=2026-09-02T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), stub.lastFrom)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), stub.lastTo)

	// Empty result renders as an empty array, not null.
	var got listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotNil(t, got.Blocks)
	assert.Empty(t, got.Blocks)
}

func TestListAvailabilityRejectsBadWindow(t *testing.T) {
	router := availabilityRouter(&stubAvailability{})

	for name, query := range map[string]string{
		"bad from": "?from=yesterday",
		"bad to":   "?to=tomorrow",
		"inverted": "?from=2026-09-02T00:00:00Z&to=2026-09-01T00:00:00Z",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/specialists/"+uuid.NewString()+"/availability"+query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpsertSchedule(t *testing.T) {
	stub := &stubAvailability{}
	router := availabilityRouter(stub)
	specialistID := uuid.New()

	body := map[string]any{
		"user_id":                   uuid.New(),
		"timezone":                  "Europe/Kyiv",
		"cancellation_window_hours": 12,
		"working_hours": map[string]any{
			"monday": map[string]any{"isWorking": true, "startTime": "10:00", "endTime": "18:00"},
			"sunday": map[string]any{"isWorking": false},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/specialists/"+specialistID.String()+"/schedule", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.saved)
	assert.Equal(t, specialistID, stub.saved.ID)
	assert.Equal(t, "Europe/Kyiv", stub.saved.Timezone)
	assert.Equal(t, 12, stub.saved.CancellationWindowHours)
}

func TestUpsertScheduleRejectsMalformedHours(t *testing.T) {
	stub := &stubAvailability{}
	router := availabilityRouter(stub)

	body := map[string]any{
		"working_hours": map[string]any{
			"monday": map[string]any{"isWorking": true, "startTime": "18:00", "endTime": "09:00"},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/specialists/"+uuid.NewString()+"/schedule", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.saved)
}

func TestUpsertScheduleRejectsBadTimezone(t *testing.T) {
	router := availabilityRouter(&stubAvailability{})

	body := map[string]any{
		"timezone": "Mars/Olympus",
		"working_hours": map[string]any{
			"monday": map[string]any{"isWorking": true, "startTime": "09:00", "endTime": "17:00"},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/specialists/"+uuid.NewString()+"/schedule", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
