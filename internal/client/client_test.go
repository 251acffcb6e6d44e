package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/usersvc/usersvc/internal/handler"
	"github.com/usersvc/usersvc/internal/middleware"
	"github.com/usersvc/usersvc/internal/repository"
	"github.com/usersvc/usersvc/internal/router"
	"github.com/usersvc/usersvc/internal/service"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemory()
	svc := service.NewUserService(service.UserServiceDeps{Store: store, Logger: logger})

	srv := httptest.NewServer(router.New(router.Deps{
		Users:        svc,
		HealthChecks: []handler.HealthCheck{{Name: "memory", Checker: store}},
		Logger:       logger,
		Security:     middleware.DefaultSecurityConfig(),
		CORS:         middleware.DefaultCORSConfig(),
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", "  "},
		{"no scheme", "localhost:8080"},
		{"ftp", "ftp://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.url, nil); err == nil {
				t.Fatalf("New(%q) succeeded, want error", tt.url)
			}
		})
	}
}

func TestClient_Lifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	msg, err := c.Ping(ctx)
	if err != nil || msg != "pong!" {
		t.Fatalf("Ping = %q, %v", msg, err)
	}

	users, err := c.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", users)
	}

	msg, err = c.CreateUser(ctx, "michael", "michael@realpython.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if msg != "michael@realpython.com was added!" {
		t.Errorf("CreateUser message = %q", msg)
	}
	if _, err := c.CreateUser(ctx, "fletcher", "fletcher@notreal.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := c.GetUser(ctx, "1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.ID != 1 || user.Username != "michael" || user.Email != "michael@realpython.com" {
		t.Errorf("GetUser = %+v", user)
	}

	users, err = c.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "michael" || users[1].Username != "fletcher" {
		t.Errorf("ListUsers = %+v", users)
	}
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.CreateUser(ctx, "michael", "michael@realpython.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := c.CreateUser(ctx, "michael2", "michael@realpython.com")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Sorry. That email already exists." {
		t.Errorf("duplicate error = %+v", apiErr)
	}

	_, err = c.CreateUser(ctx, "", "someone@example.com")
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid payload." {
		t.Errorf("invalid payload error = %v", err)
	}

	for _, id := range []string{"999", "blah"} {
		if _, err := c.GetUser(ctx, id); !IsNotFound(err) {
			t.Errorf("GetUser(%q) error = %v, want not found", id, err)
		}
	}
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Ping(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}
