package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncQuoteRequestCreated()
	m.IncQuoteResponseCreated()
	m.IncQuoteResponseCreated()
	m.ObserveAccept("accepted")
	m.ObserveAccept("conflict")
	m.ObserveAccept("conflict")
	m.IncJoinRequestProcessed("approve")
	m.ObserveDelivery("email", errors.New("boom"))
	m.ObserveJob("PurgeReadNotifications", false, time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuoteRequestsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuoteResponsesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcceptOutcomes.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AcceptOutcomes.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JoinRequestsProcessed.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDelivered.WithLabelValues("email", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("PurgeReadNotifications", "ok")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncQuoteRequestCreated()
		m.ObserveAccept("accepted")
		m.ObserveHTTP("healthz", "GET", "200", time.Now())
		m.ObserveJob("x", true, time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("getCommunity", "GET", "200", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `freighthub_http_requests_total{code="200",method="GET",route="getCommunity"} 1`)
}
