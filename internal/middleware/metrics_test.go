package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingRecorder) IncUserCreated()                    {}
func (r *recordingRecorder) IncUserRejected(string)             {}
func (r *recordingRecorder) IncUserLookup(string)               {}
func (r *recordingRecorder) ObserveStoreDuration(time.Duration) {}
func (r *recordingRecorder) IncUserCacheHit()                   {}
func (r *recordingRecorder) IncUserCacheMiss()                  {}
func (r *recordingRecorder) IncEventPublished(string)           {}
func (r *recordingRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method: method, route: route, status: status})
}

func TestMetrics_RoutePattern(t *testing.T) {
	rec := &recordingRecorder{}

	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tests := []struct {
		path      string
		wantRoute string
		wantCode  int
	}{
		{"/users/42", "/users/{id}", http.StatusNotFound},
		{"/nowhere/at/all", unmatchedRoute, http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
	}

	if len(rec.obs) != len(tests) {
		t.Fatalf("observations = %d, want %d", len(rec.obs), len(tests))
	}
	for i, tt := range tests {
		got := rec.obs[i]
		if got.route != tt.wantRoute || got.status != tt.wantCode || got.method != http.MethodGet {
			t.Errorf("%s: observation = %+v, want route %q status %d", tt.path, got, tt.wantRoute, tt.wantCode)
		}
	}
}

func TestMetrics_NilRecorder(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
