package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
	})

	before := testutil.ToFloat64(bookingsCreated)
	AddBookings(2)
	AddBookings(0)
	assert.Equal(t, before+2, testutil.ToFloat64(bookingsCreated))

	AddPayment("UPI", 750)
	AddPayment("UPI", -10)
	assert.Equal(t, 750.0, testutil.ToFloat64(paymentsCollected.WithLabelValues("UPI")))

	IncRemoteFailure("create_booking_batch")
	assert.Equal(t, 1.0, testutil.ToFloat64(remoteFailures.WithLabelValues("create_booking_batch")))
}
