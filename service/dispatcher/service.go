// Package dispatcher drives the kernel in the background: on every tick it
// admits new arrivals and dispatches ready tasks, optionally rate limited.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/farxan99/OsSimulator/internal/logging"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/progress"
)

// Kernel is the subset of the kernel driven by the dispatcher
type Kernel interface {
	AdmitNewArrivals(ctx context.Context) int
	DispatchOne(ctx context.Context, algorithm string) (*task.Task, error)
}

// Config represents dispatcher configuration
type Config struct {
	// Algorithm names the scheduler policy
	Algorithm string
	// PollingInterval is the time between two ticks
	PollingInterval time.Duration
	// Rate caps dispatches per second, 0 means unlimited
	Rate float64
	// Burst is the number of dispatches allowed at once when Rate is set
	Burst int
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() Config {
	return Config{
		Algorithm:       "FCFS",
		PollingInterval: 20 * time.Millisecond,
		Burst:           1,
	}
}

// Service runs the dispatch loop
type Service struct {
	kernel     Kernel
	config     Config
	limiter    *rate.Limiter
	logger     *slog.Logger
	onDispatch func(*task.Task)
	onProgress func(progress.Progress)
	progress   *progress.Progress
	shutdownCh chan struct{}
	once       sync.Once
}

// Option customises the dispatcher
type Option func(s *Service)

// WithLogger sets the dispatcher logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDispatchListener registers a callback invoked with every terminated task
func WithDispatchListener(fn func(*task.Task)) Option {
	return func(s *Service) {
		s.onDispatch = fn
	}
}

// WithProgressListener registers a callback receiving the dispatcher counters
// after every admission or dispatch
func WithProgressListener(fn func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// New creates a dispatcher
func New(kernel Kernel, config Config, opts ...Option) *Service {
	if config.PollingInterval <= 0 {
		config.PollingInterval = DefaultConfig().PollingInterval
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
	}
	ret := &Service{
		kernel:     kernel,
		config:     config,
		limiter:    rate.NewLimiter(limit, config.Burst),
		logger:     logging.Discard(),
		progress:   progress.New("dispatcher", nil),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.progress.OnChange(ret.onProgress)
	return ret
}

// Start runs the loop until ctx is done or Shutdown is called
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return ctx.Err()
				}
				s.logger.ErrorContext(ctx, "dispatch failed", "err", err)
			}
		}
	}
}

// Tick admits new arrivals and dispatches ready tasks until none is selected,
// returning the number of dispatched tasks.
// Counters go to the tracker carried by ctx, or to the dispatcher's own one.
func (s *Service) Tick(ctx context.Context) (int, error) {
	if _, ok := progress.FromContext(ctx); !ok {
		ctx = progress.WithTracker(ctx, s.progress)
	}
	if admitted := s.kernel.AdmitNewArrivals(ctx); admitted > 0 {
		progress.UpdateCtx(ctx, progress.Delta{Admitted: admitted})
	}
	count := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return count, err
		}
		dispatched, err := s.kernel.DispatchOne(ctx, s.config.Algorithm)
		if err != nil {
			return count, err
		}
		if dispatched == nil {
			return count, nil
		}
		count++
		progress.UpdateCtx(ctx, progress.Delta{Dispatched: 1, Terminated: 1})
		if s.onDispatch != nil {
			s.onDispatch(dispatched)
		}
		select {
		case <-s.shutdownCh:
			return count, nil
		default:
		}
	}
}

// Progress returns a snapshot of the admissions and dispatches made by the loop
func (s *Service) Progress() progress.Progress {
	return s.progress.Snapshot()
}

// Shutdown stops the loop; it is safe to call more than once
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}
