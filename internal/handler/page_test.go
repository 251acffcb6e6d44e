package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/usersvc/usersvc/internal/repository"
	"github.com/usersvc/usersvc/internal/service"
)

func newTestPageHandler(store repository.UserStore) *PageHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewUserService(service.UserServiceDeps{Store: store, Logger: logger})
	return NewPageHandler(svc, logger)
}

func postForm(h *PageHandler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func TestPageHandler_Index_Empty(t *testing.T) {
	h := newTestPageHandler(repository.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %s", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<h1>All Users</h1>") {
		t.Error("expected page heading")
	}
	if !strings.Contains(body, "<p>No users!</p>") {
		t.Error("expected empty-state message")
	}
}

func TestPageHandler_Submit(t *testing.T) {
	store := repository.NewMemory()
	h := newTestPageHandler(store)

	rec := postForm(h, url.Values{"username": {"chriswoo"}, "email": {"chriswoo@gmail.com"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 stored user, got %d", store.Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	page := httptest.NewRecorder()
	h.Index(page, req)

	body := page.Body.String()
	if !strings.Contains(body, "chriswoo") {
		t.Error("expected username on page")
	}
	if strings.Contains(body, "No users!") {
		t.Error("empty-state message should be gone")
	}
}

func TestPageHandler_Submit_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		values      url.Values
		wantMessage string
	}{
		{
			name:        "missing email",
			values:      url.Values{"username": {"chriswoo"}},
			wantMessage: "Invalid payload.",
		},
		{
			name:        "invalid utf-8 username",
			values:      url.Values{"username": {"\xff\xfe"}, "email": {"bad@gmail.com"}},
			wantMessage: "Invalid payload.",
		},
		{
			name:        "nul in email",
			values:      url.Values{"username": {"nulled"}, "email": {"nul\x00@gmail.com"}},
			wantMessage: "Invalid payload.",
		},
		{
			name:        "duplicate",
			values:      url.Values{"username": {"chriswoo"}, "email": {"new@gmail.com"}},
			wantMessage: "Sorry. That email already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemory()
			h := newTestPageHandler(store)
			postForm(h, url.Values{"username": {"chriswoo"}, "email": {"chriswoo@gmail.com"}})

			rec := postForm(h, tt.values)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMessage) {
				t.Errorf("expected %q on page, got %s", tt.wantMessage, rec.Body.String())
			}
			if store.Len() != 1 {
				t.Errorf("expected store size 1, got %d", store.Len())
			}
		})
	}
}

func TestPageHandler_EscapesUserInput(t *testing.T) {
	h := newTestPageHandler(repository.NewMemory())
	postForm(h, url.Values{"username": {"<script>x</script>"}, "email": {"x@example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if strings.Contains(rec.Body.String(), "<script>x</script>") {
		t.Error("username must be HTML-escaped")
	}
}
