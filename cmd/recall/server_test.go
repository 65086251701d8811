package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// fakeAPI blocks in Serve until Stop, or fails at once when serveErr is set.
type fakeAPI struct {
	serveErr error
	stopped  chan struct{}
	once     sync.Once
}

func newFakeAPI(serveErr error) *fakeAPI {
	return &fakeAPI{serveErr: serveErr, stopped: make(chan struct{})}
}

func (f *fakeAPI) Serve() error {
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeAPI) Stop() error {
	f.once.Do(func() { close(f.stopped) })
	return nil
}

func waitServe(t *testing.T, ctx context.Context, api lifecycleServer) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, api) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone did not return")
		return nil
	}
}

func TestServeUntilDone_CancelStopsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := newFakeAPI(nil)
	cancel()

	if err := waitServe(t, ctx, api); err != nil {
		t.Fatalf("serveUntilDone err = %v, want nil on cancel", err)
	}
	select {
	case <-api.stopped:
	default:
		t.Error("server was not stopped")
	}
}

func TestServeUntilDone_ServeFailurePropagates(t *testing.T) {
	boom := errors.New("accept: too many open files")
	api := newFakeAPI(boom)

	err := waitServe(t, context.Background(), api)
	if !errors.Is(err, boom) {
		t.Fatalf("serveUntilDone err = %v, want %v", err, boom)
	}
	select {
	case <-api.stopped:
	default:
		t.Error("server was not stopped after serve failure")
	}
}
