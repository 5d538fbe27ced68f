package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the booking agent.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	// Authentication attempts by outcome
	AuthAttempts *prometheus.CounterVec

	// Booking cycles by outcome
	Cycles *prometheus.CounterVec

	// Per-day booking results
	DayOutcomes *prometheus.CounterVec

	// Existing bookings seen in the last snapshot
	ExistingBookings prometheus.Gauge

	// Wall time of a full cycle
	CycleDuration prometheus.Histogram

	// Unix time of the last completed cycle
	LastCycle prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deskbook_auth_attempts_total",
			Help: "Authentication attempts against the booking service by outcome",
		}, []string{"outcome"}),

		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deskbook_cycles_total",
			Help: "Completed booking cycles by outcome",
		}, []string{"outcome"}), // outcome: "ok", "failed"

		DayOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deskbook_day_bookings_total",
			Help: "Single day booking attempts by result",
		}, []string{"result"}),

		ExistingBookings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deskbook_existing_bookings",
			Help: "Bookings already present for the target week at the last cycle",
		}),

		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deskbook_cycle_duration_seconds",
			Help:    "Duration of a full booking cycle",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		LastCycle: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deskbook_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last booking cycle finished",
		}),
	}
}

// IncrementAuth records an authentication attempt.
func (m *Metrics) IncrementAuth(outcome string) {
	if m != nil {
		m.AuthAttempts.WithLabelValues(outcome).Inc()
	}
}

// IncrementDayOutcome records the result of booking one day.
func (m *Metrics) IncrementDayOutcome(result string) {
	if m != nil {
		m.DayOutcomes.WithLabelValues(result).Inc()
	}
}

// SetExistingBookings records the size of the last week snapshot.
func (m *Metrics) SetExistingBookings(n int) {
	if m != nil {
		m.ExistingBookings.Set(float64(n))
	}
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(outcome string, d time.Duration, finished time.Time) {
	if m != nil {
		m.Cycles.WithLabelValues(outcome).Inc()
		m.CycleDuration.Observe(d.Seconds())
		m.LastCycle.Set(float64(finished.Unix()))
	}
}
