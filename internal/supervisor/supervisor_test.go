package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTPServer struct {
	started  chan struct{}
	stopCh   chan struct{}
	shutdown atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.started <- struct{}{}
	<-f.stopCh
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdown.Add(1)
	close(f.stopCh)
	return nil
}

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepStaging(context.Context, time.Duration) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestHTTPServerServiceShutsDownOnCancel(t *testing.T) {
	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, int32(1), srv.shutdown.Load())
}

type failingServer struct{}

func (failingServer) ListenAndServe() error          { return errors.New("address in use") }
func (failingServer) Shutdown(context.Context) error { return nil }

func TestHTTPServerServiceReportsListenFailure(t *testing.T) {
	err := NewHTTPServerService(failingServer{}, time.Second).Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}

func TestStagingSweepRunsImmediatelyAndKeepsGoingOnError(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("disk gone")}
	svc := NewStagingSweepService(sweeper, 10*time.Millisecond, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := svc.Serve(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, sweeper.calls.Load(), int32(2))
}

func TestTreeRunsServicesUntilCancelled(t *testing.T) {
	tree := NewTree(zerolog.Nop(), TreeConfig{ShutdownTimeout: time.Second})
	srv := newFakeHTTPServer()
	sweeper := &countingSweeper{}
	tree.AddAPIService(NewHTTPServerService(srv, time.Second))
	tree.AddMaintenanceService(NewStagingSweepService(sweeper, time.Hour, time.Hour, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	<-srv.started
	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	assert.Equal(t, int32(1), srv.shutdown.Load())
}
