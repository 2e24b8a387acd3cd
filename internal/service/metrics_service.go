package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and provides a
// lightweight snapshot for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	autosaveRuns    *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	autosaveSaved        uint64
	autosaveErrors       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	autosaveRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosave_runs_total",
		Help: "Autosave passes by outcome",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, autosaveRuns, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		autosaveRuns:    autosaveRuns,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "path": path, "status": fmt.Sprintf("%d", status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Microseconds()))
}

// ObserveAutosave records one autosave pass outcome.
func (m *MetricsService) ObserveAutosave(result string) {
	if m == nil {
		return
	}
	m.autosaveRuns.WithLabelValues(result).Inc()
	switch result {
	case "saved":
		atomic.AddUint64(&m.autosaveSaved, 1)
	case "error":
		atomic.AddUint64(&m.autosaveErrors, 1)
	}
}

// MetricsSnapshot is the summarised view returned by the API.
type MetricsSnapshot struct {
	RequestCount   uint64  `json:"request_count"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	AutosaveSaved  uint64  `json:"autosave_saved"`
	AutosaveErrors uint64  `json:"autosave_errors"`
	Goroutines     int     `json:"goroutines"`
}

// Snapshot returns current aggregate figures.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	count := atomic.LoadUint64(&m.requestCount)
	total := atomic.LoadUint64(&m.requestDurationTotal)
	snapshot := MetricsSnapshot{
		RequestCount:   count,
		AutosaveSaved:  atomic.LoadUint64(&m.autosaveSaved),
		AutosaveErrors: atomic.LoadUint64(&m.autosaveErrors),
		Goroutines:     runtime.NumGoroutine(),
	}
	if count > 0 {
		snapshot.AvgLatencyMs = float64(total) / float64(count) / 1000
	}
	return snapshot
}
