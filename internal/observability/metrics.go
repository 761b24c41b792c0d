// Package observability holds the Prometheus metrics of the assistant.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the assistant.
type Metrics struct {
	// Registry owns the metrics below and backs the /metrics endpoint.
	Registry *prometheus.Registry

	turnDuration  *prometheus.HistogramVec
	turnsTotal    *prometheus.CounterVec
	functionCalls *prometheus.CounterVec
	llmErrors     *prometheus.CounterVec
	llmTokens     *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewMetrics creates a dedicated registry so repeated construction in tests
// does not collide on the default one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_assistant_turn_duration_seconds",
				Help:    "Duration of conversational turns.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"intent"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_turns_total",
				Help: "Total conversational turns by outcome.",
			},
			[]string{"status"},
		),
		functionCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_function_calls_total",
				Help: "Catalog function executions by name and outcome.",
			},
			[]string{"function", "outcome"},
		),
		llmErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_llm_errors_total",
				Help: "Language model call failures.",
			},
			[]string{"provider", "operation"},
		),
		llmTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_llm_tokens_total",
				Help: "Language model tokens consumed.",
			},
			[]string{"provider", "operation"},
		),
		llmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_assistant_llm_latency_seconds",
				Help:    "Language model call latency.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
			},
			[]string{"provider", "operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_assistant_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_assistant_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RecordTurn records one processed chat message.
func (m *Metrics) RecordTurn(intent string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnDuration.WithLabelValues(intent).Observe(d.Seconds())
}

// RecordFunctionCall counts a catalog function execution.
func (m *Metrics) RecordFunctionCall(function string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.functionCalls.WithLabelValues(function, outcome).Inc()
}

// RecordLLMCall records latency and token usage of a model call.
func (m *Metrics) RecordLLMCall(provider, operation string, tokens int, d time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider, operation).Observe(d.Seconds())
	if tokens > 0 {
		m.llmTokens.WithLabelValues(provider, operation).Add(float64(tokens))
	}
}

// IncrLLMError increments the model failure counter.
func (m *Metrics) IncrLLMError(provider, operation string) {
	if m == nil {
		return
	}
	m.llmErrors.WithLabelValues(provider, operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
