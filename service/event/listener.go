package event

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Listener consumes events on its own goroutine and passes them to handler
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	started   atomic.Bool
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels the consuming loop and waits for it to exit
func (l *Listener[T]) Stop() {
	l.cancel()
	if l.started.Load() {
		<-l.done
	}
}

func (l *Listener[T]) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				slog.Warn("failed to consume event", "err", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
