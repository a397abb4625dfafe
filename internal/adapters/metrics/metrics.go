// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yagt"

// Capture metrics
var (
	CapturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captures_total",
		Help:      "Captured text buffers received from hook sessions",
	})

	// CaptureDrops counts captures that never reached a backend, by reason
	// (overflow, empty, decode).
	CaptureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capture_drops_total",
		Help:      "Captured text dropped before translation by reason",
	}, []string{"reason"})

	GamesRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "games_running",
		Help:      "Game processes currently supervised",
	})

	HookInstalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hook_installs_total",
		Help:      "Hook install attempts by result",
	}, []string{"result"})
)

// Translation metrics
var (
	// TranslationRequests counts manager requests by outcome
	// (cache_hit, coalesced, ok, failed, dropped).
	TranslationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translation_requests_total",
		Help:      "Translation requests by outcome",
	}, []string{"outcome"})

	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_calls_total",
		Help:      "Backend translate calls by backend and outcome",
	}, []string{"backend", "outcome"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_call_duration_seconds",
		Help:      "Backend translate call duration in seconds",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"backend"})

	// CircuitBreakerState is 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Remote backend circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"backend"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
