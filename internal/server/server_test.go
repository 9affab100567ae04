package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestStopUnblocksStartWithServerClosed(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.config.Host = "127.0.0.1"
	srv.config.Port = 0

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Give the listener a moment to bind before shutting down.
	time.Sleep(100 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case err := <-errCh:
		// A clean shutdown is not a server failure; callers rely on this
		// to tell a drained listener from a real error.
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Start returned %v, want http.ErrServerClosed", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStopBeforeStartIsNoOp(t *testing.T) {
	srv, _ := newTestServer(t)
	if err := srv.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}
