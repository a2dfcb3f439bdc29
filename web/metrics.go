package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is registered on its own registry so tests can build as many as they like.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	upstreamFailures  *prometheus.CounterVec
	recategorizations *prometheus.CounterVec
	analyses          *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_failures_total",
			Help: "Failed calls to the frame store or the language model.",
		}, []string{"collaborator", "op"}),
		recategorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recategorizations_total",
			Help: "External re-categorization passes by bucket and outcome.",
		}, []string{"bucket", "outcome"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "behavior_analyses_total",
			Help: "Behavior analyses served, by whether the model answer or the fallback was used.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.upstreamFailures,
		m.recategorizations,
		m.analyses,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records every routed request under its path template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) UpstreamFailure(collaborator, op string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(collaborator, op).Inc()
}

func (m *Metrics) Recategorized(bucket string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.recategorizations.WithLabelValues(bucket, outcome).Inc()
}

func (m *Metrics) Analyzed(fromModel bool) {
	if m == nil {
		return
	}
	source := "model"
	if !fromModel {
		source = "fallback"
	}
	m.analyses.WithLabelValues(source).Inc()
}
