package ossim

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/farxan99/OsSimulator/service/dispatcher"
	"github.com/farxan99/OsSimulator/service/kernel"
)

// ErrRuntimeStarted is returned when Start is called on a running runtime
var ErrRuntimeStarted = errors.New("runtime already started")

// Runtime represents the simulator runtime: the kernel and its optional
// background dispatcher.
type Runtime struct {
	kernel           *kernel.Service
	dispatcherConfig dispatcher.Config
	dispatcher       *dispatcher.Service
	done             chan error
	logger           *slog.Logger
	mux              sync.Mutex
}

// Kernel returns the scheduling kernel
func (r *Runtime) Kernel() *kernel.Service {
	return r.kernel
}

// Start launches the background dispatcher
func (r *Runtime) Start(ctx context.Context, opts ...dispatcher.Option) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.dispatcher != nil {
		return ErrRuntimeStarted
	}
	opts = append([]dispatcher.Option{dispatcher.WithLogger(r.logger)}, opts...)
	r.dispatcher = dispatcher.New(r.kernel, r.dispatcherConfig, opts...)
	r.done = make(chan error, 1)
	go func(d *dispatcher.Service, done chan error) {
		done <- d.Start(ctx)
	}(r.dispatcher, r.done)
	r.logger.InfoContext(ctx, "dispatcher started", "algorithm", r.dispatcherConfig.Algorithm)
	return nil
}

// Running reports whether the background dispatcher is active
func (r *Runtime) Running() bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.dispatcher != nil
}

// Shutdown stops the background dispatcher and waits for it to exit
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mux.Lock()
	d, done := r.dispatcher, r.done
	r.dispatcher, r.done = nil, nil
	r.mux.Unlock()
	if d == nil {
		return nil
	}
	d.Shutdown()
	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
