package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatAnswersTotal   *prometheus.CounterVec
	chatSources        *prometheus.HistogramVec
	chatNoContextTotal *prometheus.CounterVec
	chatDuration       *prometheus.HistogramVec

	indexDocuments     prometheus.Gauge
	indexBuildDuration prometheus.Gauge
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docsqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatAnswersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsqa",
			Subsystem: "chat",
			Name:      "answers_total",
			Help:      "Total chat answers by outcome.",
		},
		[]string{"service", "status"},
	)
	chatSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsqa",
			Subsystem: "chat",
			Name:      "retrieved_sources",
			Help:      "Distribution of cited sources per successful answer.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		},
		[]string{"service"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsqa",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total answers generated without any retrieved source.",
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsqa",
			Subsystem: "chat",
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	indexDocuments := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docsqa",
			Subsystem: "index",
			Name:      "documents",
			Help:      "Number of documents in the vector index.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexBuildDuration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docsqa",
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Duration of the one-time index build in seconds.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatAnswersTotal,
		chatSources,
		chatNoContextTotal,
		chatDuration,
		indexDocuments,
		indexBuildDuration,
	)

	return &ServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatAnswersTotal:   chatAnswersTotal,
		chatSources:        chatSources,
		chatNoContextTotal: chatNoContextTotal,
		chatDuration:       chatDuration,
		indexDocuments:     indexDocuments,
		indexBuildDuration: indexBuildDuration,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses free-form paths so static assets and scanner
// probes cannot mint unbounded label series.
func normalizePath(path string) string {
	switch path {
	case "/api/health", "/api/chat", "/api/clear", "/metrics":
		return path
	}
	if strings.HasPrefix(path, "/api/") {
		return "other"
	}
	return "static"
}

func (m *ServerMetrics) RecordChatAnswer(service, status string, sources int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.chatAnswersTotal.WithLabelValues(service, status).Inc()
	if status != "ok" {
		return
	}
	m.chatSources.WithLabelValues(service).Observe(float64(sources))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())
	if sources == 0 {
		m.chatNoContextTotal.WithLabelValues(service).Inc()
	}
}

func (m *ServerMetrics) RecordIndexBuild(documents int, duration time.Duration) {
	m.indexDocuments.Set(float64(documents))
	m.indexBuildDuration.Set(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
