package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "usersvc"

var (
	storeBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	httpBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
)

// PrometheusRecorder records metrics into a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersCreated    prometheus.Counter
	usersRejected   *prometheus.CounterVec
	userLookups     *prometheus.CounterVec
	storeDuration   prometheus.Histogram
	cacheRequests   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus creates a PrometheusRecorder with its own registry, so
// repeated construction in tests never collides on the global one.
func NewPrometheus() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Users successfully created.",
		}),
		usersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_rejected_total",
			Help:      "Create requests rejected, by reason.",
		}, []string{"reason"}),
		userLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_lookups_total",
			Help:      "Single-user lookups, by result.",
		}, []string{"result"}),
		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_duration_seconds",
			Help:      "Latency of user store calls.",
			Buckets:   storeBuckets,
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_requests_total",
			Help:      "User cache reads, by result.",
		}, []string{"result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "user.created events, by publish status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Processed HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers.",
			Buckets:   httpBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.usersCreated,
		r.usersRejected,
		r.userLookups,
		r.storeDuration,
		r.cacheRequests,
		r.eventsPublished,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// IncUserCreated increments the created counter.
func (r *PrometheusRecorder) IncUserCreated() {
	r.usersCreated.Inc()
}

// IncUserRejected increments the rejection counter for reason.
func (r *PrometheusRecorder) IncUserRejected(reason string) {
	r.usersRejected.WithLabelValues(reason).Inc()
}

// IncUserLookup increments the lookup counter for result.
func (r *PrometheusRecorder) IncUserLookup(result string) {
	r.userLookups.WithLabelValues(result).Inc()
}

// ObserveStoreDuration records the duration of a store call.
func (r *PrometheusRecorder) ObserveStoreDuration(duration time.Duration) {
	r.storeDuration.Observe(duration.Seconds())
}

// IncUserCacheHit increments the cache hit counter.
func (r *PrometheusRecorder) IncUserCacheHit() {
	r.cacheRequests.WithLabelValues("hit").Inc()
}

// IncUserCacheMiss increments the cache miss counter.
func (r *PrometheusRecorder) IncUserCacheMiss() {
	r.cacheRequests.WithLabelValues("miss").Inc()
}

// IncEventPublished increments the publish counter for status.
func (r *PrometheusRecorder) IncEventPublished(status string) {
	r.eventsPublished.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records one handled request.
func (r *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
