package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the scheduling flows.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	slotQueryLatency prometheus.Histogram
	notifyFailures   prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberops",
			Subsystem: "bookings",
			Name:      "requests_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberops",
			Subsystem: "bookings",
			Name:      "transitions_total",
			Help:      "Appointment status transitions by target status",
		}, []string{"status"}),
		slotQueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "barberops",
			Subsystem: "bookings",
			Name:      "slot_query_latency_seconds",
			Help:      "Latency of day-slot generation including booking lookup",
			Buckets:   prometheus.DefBuckets,
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberops",
			Subsystem: "bookings",
			Name:      "notify_failures_total",
			Help:      "Best-effort notifications that failed to send",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.slotQueryLatency, m.notifyFailures)
	return m
}

// ObserveBooking records one booking attempt. Outcome is "booked",
// "conflict" or "error".
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTransition records one status transition.
func (m *BookingMetrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(status).Inc()
}

// ObserveSlotQuery records the latency of one slot listing.
func (m *BookingMetrics) ObserveSlotQuery(seconds float64) {
	if m == nil {
		return
	}
	m.slotQueryLatency.Observe(seconds)
}

// ObserveNotifyFailure records one swallowed notification failure.
func (m *BookingMetrics) ObserveNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
