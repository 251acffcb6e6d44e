package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"testing"
	"time"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return New(handler, Options{
		Port:            0,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}, logger)
}

func TestServer_GracefulShutdownOrder(t *testing.T) {
	srv := newTestServer()

	var order []string
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	srv.OnShutdown("events", func(ctx context.Context) error {
		order = append(order, "events")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunContext(ctx) }()

	addr := <-srv.Ready()
	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunContext returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if want := []string{"events", "postgres"}; !reflect.DeepEqual(order, want) {
		t.Errorf("shutdown order = %v, want %v", order, want)
	}
}

func TestServer_ShutdownErrorsJoined(t *testing.T) {
	srv := newTestServer()

	errRedis := errors.New("redis close failed")
	srv.OnShutdown("redis", func(ctx context.Context) error { return errRedis })
	srv.OnShutdown("ok", func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunContext(ctx) }()
	<-srv.Ready()
	cancel()

	err := <-done
	if !errors.Is(err, errRedis) {
		t.Fatalf("expected joined shutdown error, got %v", err)
	}
}
