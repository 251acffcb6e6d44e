package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated           uint64
	UsersRejectedInvalid   uint64
	UsersRejectedDuplicate uint64
	UserLookupsFound       uint64
	UserLookupsNotFound    uint64
	StoreDurationCount     uint64
	StoreDurationTotalNs   int64
	UserCacheHits          uint64
	UserCacheMisses        uint64
	EventsPublished        uint64
	EventsDropped          uint64
	HTTPRequests           uint64
	HTTPServerErrors       uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	usersCreated           uint64
	usersRejectedInvalid   uint64
	usersRejectedDuplicate uint64
	userLookupsFound       uint64
	userLookupsNotFound    uint64
	storeDurationCount     uint64
	storeDurationTotalNs   int64
	userCacheHits          uint64
	userCacheMisses        uint64
	eventsPublished        uint64
	eventsDropped          uint64
	httpRequests           uint64
	httpServerErrors       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:           atomic.LoadUint64(&m.usersCreated),
		UsersRejectedInvalid:   atomic.LoadUint64(&m.usersRejectedInvalid),
		UsersRejectedDuplicate: atomic.LoadUint64(&m.usersRejectedDuplicate),
		UserLookupsFound:       atomic.LoadUint64(&m.userLookupsFound),
		UserLookupsNotFound:    atomic.LoadUint64(&m.userLookupsNotFound),
		StoreDurationCount:     atomic.LoadUint64(&m.storeDurationCount),
		StoreDurationTotalNs:   atomic.LoadInt64(&m.storeDurationTotalNs),
		UserCacheHits:          atomic.LoadUint64(&m.userCacheHits),
		UserCacheMisses:        atomic.LoadUint64(&m.userCacheMisses),
		EventsPublished:        atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:          atomic.LoadUint64(&m.eventsDropped),
		HTTPRequests:           atomic.LoadUint64(&m.httpRequests),
		HTTPServerErrors:       atomic.LoadUint64(&m.httpServerErrors),
	}
}

// IncUserCreated increments the created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserRejected increments the rejection counter for reason.
// Unknown reasons are ignored.
func (m *InMemoryRecorder) IncUserRejected(reason string) {
	switch reason {
	case ReasonInvalidPayload:
		atomic.AddUint64(&m.usersRejectedInvalid, 1)
	case ReasonDuplicate:
		atomic.AddUint64(&m.usersRejectedDuplicate, 1)
	}
}

// IncUserLookup increments the lookup counter for result.
func (m *InMemoryRecorder) IncUserLookup(result string) {
	switch result {
	case LookupFound:
		atomic.AddUint64(&m.userLookupsFound, 1)
	case LookupNotFound:
		atomic.AddUint64(&m.userLookupsNotFound, 1)
	}
}

// ObserveStoreDuration records the duration of a store call.
func (m *InMemoryRecorder) ObserveStoreDuration(duration time.Duration) {
	atomic.AddUint64(&m.storeDurationCount, 1)
	atomic.AddInt64(&m.storeDurationTotalNs, duration.Nanoseconds())
}

// IncUserCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncUserCacheHit() {
	atomic.AddUint64(&m.userCacheHits, 1)
}

// IncUserCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncUserCacheMiss() {
	atomic.AddUint64(&m.userCacheMisses, 1)
}

// IncEventPublished increments the publish counter for status.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	switch status {
	case PublishSuccess:
		atomic.AddUint64(&m.eventsPublished, 1)
	case PublishDropped:
		atomic.AddUint64(&m.eventsDropped, 1)
	}
}

// ObserveHTTPRequest counts requests and 5xx responses.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&m.httpServerErrors, 1)
	}
}
