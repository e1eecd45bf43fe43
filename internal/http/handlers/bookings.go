package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/internal/booking"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// Admitter admits new bookings.
type Admitter interface {
	Admit(ctx context.Context, req booking.Request) (*booking.Booking, error)
}

// Transitioner drives post-admission lifecycle events.
type Transitioner interface {
	Pay(ctx context.Context, bookingID uuid.UUID, method string) (*booking.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error)
	Start(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error)
	Complete(ctx context.Context, bookingID uuid.UUID, notes string) (*booking.Booking, error)
	NoShow(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error)
}

// BookingFinder loads bookings for reads.
type BookingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

// BookingHandler serves booking admission, transitions, and reads.
type BookingHandler struct {
	admission Admitter
	lifecycle Transitioner
	finder    BookingFinder
	logger    *logging.Logger
}

// NewBookingHandler creates the booking handler.
func NewBookingHandler(admission Admitter, lifecycle Transitioner, finder BookingFinder, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{admission: admission, lifecycle: lifecycle, finder: finder, logger: logger}
}

// Create admits a booking request.
// POST /bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	b, err := h.admission.Admit(r.Context(), req)
	if err != nil {
		h.logBookingError(r, "booking admission rejected", err)
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type transitionRequest struct {
	Event         string `json:"event"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Transition applies a lifecycle event to a booking.
// POST /bookings/{bookingID}/transition
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		jsonError(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var b *booking.Booking
	switch req.Event {
	case "pay":
		b, err = h.lifecycle.Pay(r.Context(), bookingID, req.PaymentMethod)
	case "cancel":
		b, err = h.lifecycle.Cancel(r.Context(), bookingID)
	case "start":
		b, err = h.lifecycle.Start(r.Context(), bookingID)
	case "complete":
		b, err = h.lifecycle.Complete(r.Context(), bookingID, req.Notes)
	case "no_show":
		b, err = h.lifecycle.NoShow(r.Context(), bookingID)
	default:
		jsonError(w, "unknown event: want pay, cancel, start, complete, or no_show", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logBookingError(r, "booking transition rejected", err)
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Get returns a booking by id.
// GET /bookings/{bookingID}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		jsonError(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.finder.FindByID(r.Context(), bookingID)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) logBookingError(r *http.Request, msg string, err error) {
	if booking.IsAdmissionConflict(err) {
		h.logger.Info(msg, "path", r.URL.Path, "reason", err)
		return
	}
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
}
