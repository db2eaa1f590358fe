package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costlens",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "costlens",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "costlens",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Anomaly detection metrics
	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costlens",
			Subsystem: "anomaly",
			Name:      "detected_total",
			Help:      "Total number of anomalies found, per detector and severity",
		},
		[]string{"detector", "severity"},
	)

	detectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "costlens",
			Subsystem: "anomaly",
			Name:      "detector_duration_seconds",
			Help:      "Duration of a single detector pass in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"detector"},
	)

	detectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costlens",
			Subsystem: "anomaly",
			Name:      "runs_total",
			Help:      "Total number of full detection runs",
		},
		[]string{"status"},
	)

	observationsAnalyzed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "costlens",
			Subsystem: "anomaly",
			Name:      "observations_per_run",
			Help:      "Number of cost observations analyzed per detection run",
			Buckets:   []float64{14, 30, 60, 90, 180, 365, 730},
		},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnomaly records a detected anomaly
func RecordAnomaly(detector, severity string) {
	anomaliesDetectedTotal.WithLabelValues(detector, severity).Inc()
}

// RecordDetectorDuration records the duration of a single detector pass
func RecordDetectorDuration(detector string, duration time.Duration) {
	detectorDuration.WithLabelValues(detector).Observe(duration.Seconds())
}

// RecordDetectionRun records a completed detection run
func RecordDetectionRun(status string, observations int) {
	detectionRunsTotal.WithLabelValues(status).Inc()
	observationsAnalyzed.Observe(float64(observations))
}
