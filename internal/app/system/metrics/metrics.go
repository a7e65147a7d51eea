// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blend"

var (
	once sync.Once

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Count of public submissions accepted, by resource.",
		},
		[]string{"resource"},
	)

	broadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Count of real-time events published, by event name.",
		},
		[]string{"event"},
	)

	socketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "socket_clients",
			Help:      "Number of connected real-time clients on this instance.",
		},
	)

	droppedClients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socket_clients_dropped_total",
			Help:      "Count of real-time clients dropped for falling behind.",
		},
	)

	mediaCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_cleanup_failures_total",
			Help:      "Count of uploaded files that could not be removed.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Count of booking status changes, by new status.",
		},
		[]string{"status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			submissions,
			broadcasts,
			socketClients,
			droppedClients,
			mediaCleanupFailures,
			bookingDecisions,
			requestDuration,
		)
	})
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncSubmission(resource string) {
	submissions.WithLabelValues(resource).Inc()
}

func IncBroadcast(event string) {
	broadcasts.WithLabelValues(event).Inc()
}

func SetSocketClients(n int) {
	socketClients.Set(float64(n))
}

func IncDroppedClient() {
	droppedClients.Inc()
}

func IncMediaCleanupFailure() {
	mediaCleanupFailures.Inc()
}

func IncBookingDecision(status string) {
	bookingDecisions.WithLabelValues(status).Inc()
}

// Instrument records request durations labelled with the chi route pattern,
// so /api/quotes/{id} is one series regardless of id.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
