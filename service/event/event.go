// Package event carries typed kernel and cache events from producers to
// observers over a messaging queue.
package event

import (
	"time"

	"github.com/farxan99/OsSimulator/internal/clock"
)

// Context describes where an event originated
type Context struct {
	InstanceID string `json:"instanceID"`
	TaskID     int    `json:"taskID,omitempty"`
	EventType  string `json:"eventType"`
	Source     string `json:"source"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
