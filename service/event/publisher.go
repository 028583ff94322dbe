package event

import (
	"context"

	"github.com/farxan99/OsSimulator/internal/clock"
	"github.com/farxan99/OsSimulator/service/messaging"
)

type Publisher[T any] struct {
	queue    messaging.Queue[Event[T]]
	anyQueue messaging.Queue[Event[any]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Publish stamps the event and sends it to the typed queue and, when attached,
// to the untyped stream.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	if p.anyQueue != nil {
		if err := p.anyQueue.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil {
			return err
		}
	}
	return p.queue.Publish(ctx, event)
}

// Consume blocks for the next event
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

// Drain returns every pending event without blocking
func (p *Publisher[T]) Drain() []*Event[T] {
	var ret []*Event[T]
	for {
		msg := p.queue.Poll()
		if msg == nil {
			return ret
		}
		_ = msg.Ack()
		ret = append(ret, msg.T())
	}
}
