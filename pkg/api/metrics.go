package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Image operation metrics
	imageOperationsTotal   *prometheus.CounterVec
	imageOperationDuration *prometheus.HistogramVec
	imagesTotal            prometheus.Gauge
	imageBytesTotal        prometheus.Gauge

	// Input error metrics
	inputErrorsTotal *prometheus.CounterVec

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with
// the default registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all Prometheus metrics against reg.
// Tests pass their own registry so repeated construction does not
// collide.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		// HTTP request metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexforge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hexforge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hexforge_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Image operation metrics
		imageOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexforge_image_operations_total",
				Help: "Total number of image operations",
			},
			[]string{"operation", "status"},
		),

		imageOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hexforge_image_operation_duration_seconds",
				Help:    "Image operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		imagesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hexforge_images_total",
				Help: "Number of images currently registered",
			},
		),

		imageBytesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hexforge_image_bytes_total",
				Help: "Total data bytes across registered images",
			},
		),

		// Input error metrics
		inputErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexforge_input_errors_total",
				Help: "Total number of rejected inputs by error kind",
			},
			[]string{"kind"},
		),

		// Authentication metrics
		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexforge_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		// Health check metrics
		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexforge_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordImageOperation records an image operation
func (m *Metrics) RecordImageOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.imageOperationsTotal.WithLabelValues(operation, status).Inc()
	m.imageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordInputError records a rejected input by error kind
func (m *Metrics) RecordInputError(kind string) {
	m.inputErrorsTotal.WithLabelValues(kind).Inc()
}

// UpdateRegistryStats updates the registry gauges
func (m *Metrics) UpdateRegistryStats(images, bytes int) {
	m.imagesTotal.Set(float64(images))
	m.imageBytesTotal.Set(float64(bytes))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Record request in flight
		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the original handler
		handler(rw, r)

		// Record metrics
		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if API key is present
			apiKey := r.Header.Get("X-API-Key")
			hasAPIKey := apiKey != ""

			// Call the auth middleware
			next(h).ServeHTTP(w, r)

			// Record auth metrics based on response status
			if rw, ok := w.(*responseWriter); ok {
				success := rw.statusCode != http.StatusUnauthorized
				if hasAPIKey {
					m.RecordAuthRequest(success)
				}
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
