// Package messaging defines the queue abstraction used to carry kernel and
// cache events to observers.
package messaging

import (
	"context"
)

// Vendor represents the name of a messaging vendor
type Vendor string

// VendorMemory selects the in-process channel queue
const VendorMemory Vendor = "memory"

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done
	Consume(ctx context.Context) (Message[T], error)

	// Poll returns the next message without blocking; nil when the queue is empty
	Poll() Message[T]
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message identifier
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
