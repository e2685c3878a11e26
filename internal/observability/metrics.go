package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jogging_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, partitioned by method, route pattern and status.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jogging_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "jogging_tracker",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity written to the store.",
	})
	sessionsEnded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jogging_tracker",
		Subsystem: "auth",
		Name:      "logouts_total",
		Help:      "Logout requests, partitioned by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, activityPersistGauge, sessionsEnded)
}

// ObserveRequest records a finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordLogout counts a logout by outcome ("ok" or "error").
func RecordLogout(outcome string) {
	sessionsEnded.WithLabelValues(outcome).Inc()
}
