package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the planner runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runTotal        *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runGenerations  prometheus.Histogram
	bestFitness     *prometheus.GaugeVec
}

// NewMetricsService registers the planner collectors on a private registry.
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

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_runs_total",
		Help: "Total planner runs by kind and outcome",
	}, []string{"kind", "outcome"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_run_duration_seconds",
		Help:    "Wall-clock duration of planner runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"kind"})

	runGenerations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_run_generations",
		Help:    "Evolutions consumed before a run terminated",
		Buckets: prometheus.LinearBuckets(0, 25, 10),
	})

	bestFitness := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "planner_best_fitness",
		Help: "Best fitness of the most recent run by kind",
	}, []string{"kind"})

	registry.MustRegister(requestDuration, requestTotal, runTotal, runDuration, runGenerations, bestFitness)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runTotal:        runTotal,
		runDuration:     runDuration,
		runGenerations:  runGenerations,
		bestFitness:     bestFitness,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObservePlannerRun records the outcome of one planner invocation.
func (m *MetricsService) ObservePlannerRun(kind string, generations int, fitness float64, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runTotal.WithLabelValues(kind, outcome).Inc()
	m.runDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		m.runGenerations.Observe(float64(generations))
		m.bestFitness.WithLabelValues(kind).Set(fitness)
	}
}
