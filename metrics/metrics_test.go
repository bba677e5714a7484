// metrics_test.go
package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", 200, 30*time.Millisecond)
	m.ObserveRequest("POST", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestRetriesAndRefreshes(t *testing.T) {
	m := New(nil)

	m.IncRetry(42001)
	m.IncRetry(-40001)
	m.ObserveRefresh(nil)
	m.ObserveRefresh(errors.New("boom"))
	m.ObserveRefresh(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.retriesTotal.WithLabelValues("42001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retriesTotal.WithLabelValues("-40001")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("failure")))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)

	var second *Metrics
	require.NotPanics(t, func() { second = New(reg) })

	first.IncRetry(40001)
	second.IncRetry(40001)

	assert.Equal(t, 2.0, testutil.ToFloat64(second.retriesTotal.WithLabelValues("40001")))
	count, err := testutil.GatherAndCount(reg, "wechat_http_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
