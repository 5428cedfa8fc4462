// Package metrics holds the Prometheus collectors for the booking core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation and cancellation outcomes.
const (
	OutcomeConfirmed    = "confirmed"
	OutcomeReplayed     = "replayed"
	OutcomeCapacity     = "capacity"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid_input"
	OutcomeRetryable    = "retryable"
	OutcomeForbidden    = "forbidden"
	OutcomeCancelled    = "cancelled"
	OutcomeAlreadyFinal = "already_cancelled"
	OutcomeError        = "error"
)

var (
	Reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	Cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_cancellations_total",
			Help: "Cancellation attempts by outcome",
		},
		[]string{"outcome"},
	)

	ReserveRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_reserve_retries_total",
			Help: "Check-and-commit cycles retried after a lock or serialization conflict",
		},
	)

	reserveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_reserve_duration_seconds",
			Help:    "Wall time of a reservation including retries",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"outcome"},
	)
)

// TrackReservation records one finished reservation attempt
func TrackReservation(outcome string, duration time.Duration) {
	Reservations.WithLabelValues(outcome).Inc()
	reserveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// TrackCancellation records one finished cancellation attempt
func TrackCancellation(outcome string) {
	Cancellations.WithLabelValues(outcome).Inc()
}
