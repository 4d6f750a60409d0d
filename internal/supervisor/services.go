package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an http.Server until the supervisor stops it.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return "http-server"
}

// Listener is a server that owns its accept loop, like the ops socket.
type Listener interface {
	Listen() error
	Serve(ctx context.Context) error
	Close() error
}

type ListenerService struct {
	name     string
	listener Listener
}

func NewListenerService(name string, listener Listener) *ListenerService {
	return &ListenerService{name: name, listener: listener}
}

func (l *ListenerService) Serve(ctx context.Context) error {
	if err := l.listener.Listen(); err != nil {
		return fmt.Errorf("%s listen: %w", l.name, err)
	}
	defer func() { _ = l.listener.Close() }()
	return l.listener.Serve(ctx)
}

func (l *ListenerService) String() string {
	return l.name
}

// Sweeper removes abandoned upload staging files.
type Sweeper interface {
	SweepStaging(ctx context.Context, staleAfter time.Duration) (int, error)
}

// StagingSweepService runs a sweep once at start and then every interval.
type StagingSweepService struct {
	sweeper    Sweeper
	interval   time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger
}

func NewStagingSweepService(sweeper Sweeper, interval, staleAfter time.Duration, logger zerolog.Logger) *StagingSweepService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StagingSweepService{sweeper: sweeper, interval: interval, staleAfter: staleAfter, logger: logger}
}

func (s *StagingSweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *StagingSweepService) sweep(ctx context.Context) {
	removed, err := s.sweeper.SweepStaging(ctx, s.staleAfter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("staging sweep failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("staging sweep removed stale uploads")
	}
}

func (s *StagingSweepService) String() string {
	return "staging-sweeper"
}
