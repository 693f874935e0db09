package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	paymentOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Terminal and flagged payment outcomes",
		},
		[]string{"outcome"},
	)

	reapedReservationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaped_reservations_total",
			Help: "Expired reservations released by the sweeper",
		},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Payment gateway call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)

func TrackReservation(outcome string) {
	reservationsTotal.WithLabelValues(outcome).Inc()
}

func TrackPaymentOutcome(outcome string) {
	paymentOutcomesTotal.WithLabelValues(outcome).Inc()
}

func TrackReapedReservations(n int64) {
	reapedReservationsTotal.Add(float64(n))
}

func TrackGatewayRequest(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	gatewayRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}
