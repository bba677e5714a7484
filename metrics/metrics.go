// metrics.go
// Package metrics exposes Prometheus instruments for API calls, expired-token retries and token refreshes.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wechat"

// Metrics groups the client's collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	refreshTotal    *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a private registry, which keeps the
// instruments usable without exporting them. Collectors already registered on reg by another
// client are reused.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		requestsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP exchanges with the platform API, by method and status code.",
			},
			[]string{"method", "code"},
		)),
		requestDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency of single HTTP exchanges, excluding retry delays.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		)),
		retriesTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "retries_total",
				Help:      "Requests re-issued after an expired-token error code.",
			},
			[]string{"errcode"},
		)),
		refreshTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "token",
				Name:      "refresh_total",
				Help:      "Access token refreshes, by result.",
			},
			[]string{"result"},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveRequest records one HTTP exchange. code 0 means no response was received.
func (m *Metrics) ObserveRequest(method string, code int, duration time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requestsTotal.WithLabelValues(method, label).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncRetry records a retry triggered by errcode.
func (m *Metrics) IncRetry(errcode int) {
	m.retriesTotal.WithLabelValues(strconv.Itoa(errcode)).Inc()
}

// ObserveRefresh records the outcome of a token refresh.
func (m *Metrics) ObserveRefresh(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.refreshTotal.WithLabelValues(result).Inc()
}
