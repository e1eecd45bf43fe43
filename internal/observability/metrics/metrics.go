package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for admission and lifecycle flows.
type BookingMetrics struct {
	admissionsTotal  *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	expiredTotal     prometheus.Counter
	admitSeconds     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		admissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miyzapis",
			Subsystem: "booking",
			Name:      "admissions_total",
			Help:      "Booking admission attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miyzapis",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking status transitions by event and outcome",
		}, []string{"event", "outcome"}),
		expiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "miyzapis",
			Subsystem: "booking",
			Name:      "pending_expired_total",
			Help:      "Pending-payment bookings cancelled by the expiry sweep",
		}),
		admitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "miyzapis",
			Subsystem: "booking",
			Name:      "admit_seconds",
			Help:      "Duration of booking admission attempts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.admissionsTotal, m.transitionsTotal, m.expiredTotal, m.admitSeconds)
	return m
}

func (m *BookingMetrics) ObserveAdmission(outcome string) {
	if m == nil {
		return
	}
	m.admissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *BookingMetrics) ObserveAdmitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.admitSeconds.Observe(seconds)
}

func (m *BookingMetrics) ObserveExpired(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.expiredTotal.Add(float64(count))
}

// SlotMetrics exposes counters/histograms for availability generation.
type SlotMetrics struct {
	generationSeconds prometheus.Histogram
	blocksInserted    prometheus.Counter
}

func NewSlotMetrics(reg prometheus.Registerer) *SlotMetrics {
	m := &SlotMetrics{
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "miyzapis",
			Subsystem: "availability",
			Name:      "generation_seconds",
			Help:      "Duration of per-specialist slot generation runs",
			Buckets:   prometheus.DefBuckets,
		}),
		blocksInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "miyzapis",
			Subsystem: "availability",
			Name:      "blocks_inserted_total",
			Help:      "Availability blocks inserted (duplicates excluded)",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.generationSeconds, m.blocksInserted)
	return m
}

func (m *SlotMetrics) ObserveGeneration(seconds float64, inserted int64) {
	if m == nil {
		return
	}
	m.generationSeconds.Observe(seconds)
	if inserted > 0 {
		m.blocksInserted.Add(float64(inserted))
	}
}
