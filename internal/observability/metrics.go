package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the API. A nil *Metrics is a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	budgetRepairs   prometheus.Counter
	lowStock        prometheus.Gauge
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

// NewMetrics creates a registry with the HTTP, job and domain metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vdg_http_requests_total",
		Help: "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vdg_http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	repairs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdg_project_budget_repairs_total",
		Help: "Projects whose persisted totalBudget was rewritten by reconciliation.",
	})
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdg_materials_low_stock",
		Help: "Materials with low or critical stock at the last check.",
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vdg_job_runs_total",
		Help: "Background job runs by job and result.",
	}, []string{"job", "result"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vdg_job_duration_seconds",
		Help:    "Background job duration.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"job"})

	registry.MustRegister(
		requests, duration, repairs, lowStock, jobRuns, jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		budgetRepairs:   repairs,
		lowStock:        lowStock,
		jobRuns:         jobRuns,
		jobDuration:     jobDuration,
	}
}

// Handler returns the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records a counter and a latency sample per request, labelled by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// AddBudgetRepairs counts projects repaired by reconciliation
func (m *Metrics) AddBudgetRepairs(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.budgetRepairs.Add(float64(n))
}

// SetLowStock records the number of materials needing reorder
func (m *Metrics) SetLowStock(n int) {
	if m == nil {
		return
	}
	m.lowStock.Set(float64(n))
}

// ObserveJob records one run of a background job
func (m *Metrics) ObserveJob(job string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

// Registerer exposes the registry for extra collectors
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
