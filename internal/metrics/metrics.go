package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "turfdesk"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings accepted by the data service.",
		},
	)

	paymentsCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_collected_total",
			Help:      "Amount collected, by payment mode.",
		},
		[]string{"mode"},
	)

	remoteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_failures_total",
			Help:      "Failed data service calls by operation.",
		},
		[]string{"operation"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, paymentsCollected, remoteFailures)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func AddBookings(n int) {
	if n > 0 {
		bookingsCreated.Add(float64(n))
	}
}

// AddPayment records a collected amount. Non-positive amounts are ignored
// since counters only go up.
func AddPayment(mode string, amount float64) {
	if amount > 0 {
		paymentsCollected.WithLabelValues(mode).Add(amount)
	}
}

func IncRemoteFailure(operation string) {
	remoteFailures.WithLabelValues(operation).Inc()
}
