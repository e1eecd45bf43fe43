package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xidik12/MiyZapis-sub005/internal/booking"
	"github.com/xidik12/MiyZapis-sub005/internal/payments"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
)

// errorBody is the structured error payload every endpoint returns.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorBody{Error: message})
}

func jsonErrorCode(w http.ResponseWriter, message, code string, status int) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// writeBookingError maps engine errors onto HTTP statuses: admission
// conflicts are 409, validation failures 400, lifecycle violations 422,
// payment declines 402. Anything unrecognized is a 500 with a generic
// body so internals never leak.
func writeBookingError(w http.ResponseWriter, err error) {
	var (
		slotUnavailable *booking.SlotNotAvailableError
		slotTaken       *booking.SlotAlreadyBookedError
		sessionFull     *booking.GroupSessionFullError
		selfBooking     *booking.SelfBookingNotAllowedError
		invalidMove     *booking.InvalidTransitionError
		windowViolation *booking.CancellationWindowViolation
		parseErr        *schedule.ScheduleParseError
	)
	switch {
	case errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, payments.ErrUnsupportedMethod):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrServiceNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &slotUnavailable):
		jsonErrorCode(w, err.Error(), "slot_unavailable", http.StatusConflict)
	case errors.As(err, &slotTaken):
		jsonErrorCode(w, err.Error(), "slot_already_booked", http.StatusConflict)
	case errors.As(err, &sessionFull):
		jsonErrorCode(w, err.Error(), "group_session_full", http.StatusConflict)
	case errors.As(err, &selfBooking):
		jsonErrorCode(w, err.Error(), "self_booking_not_allowed", http.StatusConflict)
	case errors.As(err, &invalidMove):
		jsonErrorCode(w, err.Error(), "invalid_transition", http.StatusUnprocessableEntity)
	case errors.As(err, &windowViolation):
		jsonErrorCode(w, err.Error(), "cancellation_window", http.StatusUnprocessableEntity)
	case errors.Is(err, booking.ErrPaymentFailed):
		jsonErrorCode(w, err.Error(), "payment_failed", http.StatusPaymentRequired)
	case errors.As(err, &parseErr):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
