// Package notify dispatches booking events to interested parties.
// Delivery is fire-and-forget: a sink failure must never roll back or
// block a booking transition.
package notify

import (
	"context"

	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// Booking lifecycle events emitted by the engine.
const (
	EventBookingPending   = "booking.pending_payment"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingNoShow    = "booking.no_show"
)

// Sink consumes booking events. Implementations decide delivery.
type Sink interface {
	Notify(ctx context.Context, event string, payload any) error
}

// LogSink writes events to the structured log. Always safe to use as the
// default sink.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a log-backed sink.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, event string, payload any) error {
	_ = ctx
	s.logger.Info("booking event", "event", event, "payload", payload)
	return nil
}

// FanoutSink forwards each event to every child sink. Child errors are
// logged and swallowed so one slow or broken channel cannot stop the rest.
type FanoutSink struct {
	sinks  []Sink
	logger *logging.Logger
}

// NewFanoutSink creates a fanout over the given sinks; nils are skipped.
func NewFanoutSink(logger *logging.Logger, sinks ...Sink) *FanoutSink {
	if logger == nil {
		logger = logging.Default()
	}
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FanoutSink{sinks: kept, logger: logger}
}

func (f *FanoutSink) Notify(ctx context.Context, event string, payload any) error {
	for _, s := range f.sinks {
		if err := s.Notify(ctx, event, payload); err != nil {
			f.logger.Error("notify: sink failed", "event", event, "error", err)
		}
	}
	return nil
}
