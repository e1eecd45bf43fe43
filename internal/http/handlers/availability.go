package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/internal/availability"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// SlotGenerator triggers availability generation for one specialist.
type SlotGenerator interface {
	Generate(ctx context.Context, specialistID uuid.UUID, horizonWeeks int) (int64, error)
}

// BlockLister reads bookable blocks.
type BlockLister interface {
	ListOpen(ctx context.Context, specialistID uuid.UUID, from, to time.Time, pendingCutoff time.Time) ([]availability.Block, error)
}

// ScheduleWriter persists specialist scheduling profiles.
type ScheduleWriter interface {
	Set(ctx context.Context, sp *schedule.Specialist) error
}

// AvailabilityHandler serves specialist availability: generation (admin),
// the open-slot listing, and the schedule profile upsert (admin).
type AvailabilityHandler struct {
	generator      SlotGenerator
	blocks         BlockLister
	schedules      ScheduleWriter
	horizonWeeks   int
	paymentTimeout time.Duration
	clock          func() time.Time
	logger         *logging.Logger
}

// NewAvailabilityHandler creates the availability handler.
func NewAvailabilityHandler(generator SlotGenerator, blocks BlockLister, schedules ScheduleWriter, horizonWeeks int, paymentTimeout time.Duration, logger *logging.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{
		generator:      generator,
		blocks:         blocks,
		schedules:      schedules,
		horizonWeeks:   horizonWeeks,
		paymentTimeout: paymentTimeout,
		clock:          func() time.Time { return time.Now().UTC() },
		logger:         logger,
	}
}

// WithClock overrides the time source. Test hook.
func (h *AvailabilityHandler) WithClock(clock func() time.Time) *AvailabilityHandler {
	h.clock = clock
	return h
}

type generateResponse struct {
	SpecialistID uuid.UUID `json:"specialist_id"`
	Inserted     int64     `json:"inserted"`
	HorizonWeeks int       `json:"horizon_weeks"`
}

// Generate triggers slot generation to the horizon.
// POST /admin/specialists/{specialistID}/availability/generate
func (h *AvailabilityHandler) Generate(w http.ResponseWriter, r *http.Request) {
	specialistID, err := uuid.Parse(chi.URLParam(r, "specialistID"))
	if err != nil {
		jsonError(w, "invalid specialist id", http.StatusBadRequest)
		return
	}

	inserted, err := h.generator.Generate(r.Context(), specialistID, h.horizonWeeks)
	if err != nil {
		if errors.Is(err, availability.ErrNoSchedule) {
			jsonError(w, "specialist has no schedule", http.StatusNotFound)
			return
		}
		var parseErr *schedule.ScheduleParseError
		if errors.As(err, &parseErr) {
			jsonError(w, parseErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("availability generation failed", "specialist_id", specialistID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		SpecialistID: specialistID,
		Inserted:     inserted,
		HorizonWeeks: h.horizonWeeks,
	})
}

type listResponse struct {
	SpecialistID uuid.UUID            `json:"specialist_id"`
	From         time.Time            `json:"from"`
	To           time.Time            `json:"to"`
	Blocks       []availability.Block `json:"blocks"`
}

// List returns a specialist's bookable blocks in a window. Defaults to
// now through the generation horizon.
// GET /specialists/{specialistID}/availability?from=RFC3339&to=RFC3339
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	specialistID, err := uuid.Parse(chi.URLParam(r, "specialistID"))
	if err != nil {
		jsonError(w, "invalid specialist id", http.StatusBadRequest)
		return
	}

	now := h.clock()
	from, to := now, now.AddDate(0, 0, 7*h.horizonWeeks)
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonError(w, "invalid from: want RFC3339", http.StatusBadRequest)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonError(w, "invalid to: want RFC3339", http.StatusBadRequest)
			return
		}
	}
	if !to.After(from) {
		jsonError(w, "to must be after from", http.StatusBadRequest)
		return
	}

	blocks, err := h.blocks.ListOpen(r.Context(), specialistID, from.UTC(), to.UTC(), now.Add(-h.paymentTimeout))
	if err != nil {
		h.logger.Error("availability listing failed", "specialist_id", specialistID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if blocks == nil {
		blocks = []availability.Block{}
	}

	writeJSON(w, http.StatusOK, listResponse{
		SpecialistID: specialistID,
		From:         from.UTC(),
		To:           to.UTC(),
		Blocks:       blocks,
	})
}

type upsertScheduleRequest struct {
	UserID                  uuid.UUID       `json:"user_id"`
	Timezone                string          `json:"timezone,omitempty"`
	CancellationWindowHours int             `json:"cancellation_window_hours,omitempty"`
	WorkingHours            json.RawMessage `json:"working_hours"`
}

// UpsertSchedule stores a specialist's scheduling profile. The working
// hours document is parsed up front so malformed schedules are rejected
// before they can poison generation.
// PUT /admin/specialists/{specialistID}/schedule
func (h *AvailabilityHandler) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	specialistID, err := uuid.Parse(chi.URLParam(r, "specialistID"))
	if err != nil {
		jsonError(w, "invalid specialist id", http.StatusBadRequest)
		return
	}

	var req upsertScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.WorkingHours) == 0 {
		jsonError(w, "working_hours is required", http.StatusBadRequest)
		return
	}
	if _, err := schedule.ParseWorkingHours(req.WorkingHours); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			jsonError(w, "invalid timezone", http.StatusBadRequest)
			return
		}
	}

	sp := &schedule.Specialist{
		ID:                      specialistID,
		UserID:                  req.UserID,
		Timezone:                req.Timezone,
		CancellationWindowHours: req.CancellationWindowHours,
		WorkingHours:            req.WorkingHours,
	}
	if err := h.schedules.Set(r.Context(), sp); err != nil {
		h.logger.Error("schedule upsert failed", "specialist_id", specialistID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sp)
}
