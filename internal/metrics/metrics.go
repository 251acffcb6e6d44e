// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Rejection reasons for IncUserRejected.
const (
	ReasonInvalidPayload = "invalid_payload"
	ReasonDuplicate      = "duplicate"
)

// Lookup results for IncUserLookup.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
)

// Publish statuses for IncEventPublished.
const (
	PublishSuccess = "success"
	PublishDropped = "dropped"
)

// Recorder captures metric events for the application.
// PrometheusRecorder backs /metrics in production; InMemoryRecorder keeps
// plain counters for tests and the text exposition in the handler package.
type Recorder interface {
	// User registry metrics
	IncUserCreated()
	IncUserRejected(reason string)
	IncUserLookup(result string)
	ObserveStoreDuration(duration time.Duration)

	// Cache metrics
	IncUserCacheHit()
	IncUserCacheMiss()

	// Event stream metrics
	IncEventPublished(status string)

	// HTTP metrics, keyed by route pattern rather than raw path
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
