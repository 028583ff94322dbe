package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/farxan99/OsSimulator/internal/clock"
	"github.com/farxan99/OsSimulator/internal/idgen"
	"github.com/farxan99/OsSimulator/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// MaxRetries is how many times a nacked message is requeued
	MaxRetries int
	// DeadLetter keeps messages that exhausted their retries
	DeadLetter bool
	// QueueBuffer is the number of messages held before the oldest is dropped
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		DeadLetter:  true,
		QueueBuffer: 1024,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// ID returns the message identifier
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack requeues the message until MaxRetries is exceeded, then moves it to
// the dead letter list when enabled.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	if m.processed {
		m.mu.Unlock()
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	m.retryCount++
	retry := m.retryCount
	m.mu.Unlock()

	if retry <= m.queue.config.MaxRetries {
		m.queue.push(&Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			retryCount: retry,
			createdAt:  clock.Now(),
		})
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	return nil
}

// Queue implements an in-memory messaging.Queue. Publish never blocks: when
// the buffer is full the oldest pending message is dropped.
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []*Message[T]
	dropped  int
	config   Config
	mu       sync.Mutex
	dlqMu    sync.Mutex
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("nil payload")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.push(&Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	})
	return nil
}

func (q *Queue[T]) push(msg *Message[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		select {
		case q.messages <- msg:
			return
		default:
		}
		select {
		case <-q.messages:
			q.dropped++
		default:
		}
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Poll retrieves a single item without waiting
func (q *Queue[T]) Poll() messaging.Message[T] {
	select {
	case msg := <-q.messages:
		return msg
	default:
		return nil
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Dropped returns how many messages were discarded because the buffer was full
func (q *Queue[T]) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
