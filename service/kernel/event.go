package kernel

import (
	"fmt"

	"github.com/farxan99/OsSimulator/model/task"
)

// EventType names a task lifecycle transition
type EventType string

const (
	EventCreated    EventType = "created"
	EventSubmitted  EventType = "submitted"
	EventAdmitted   EventType = "admitted"
	EventSelected   EventType = "selected"
	EventProcessing EventType = "processing"
	EventTerminated EventType = "terminated"
	EventDestroyed  EventType = "destroyed"
	EventWaiting    EventType = "waiting"
	EventResumed    EventType = "resumed"
	EventPriority   EventType = "priority"
)

// Event describes a task transition published on the event service
type Event struct {
	Type     EventType  `json:"type"`
	TaskID   task.ID    `json:"taskID"`
	From     task.State `json:"from,omitempty"`
	To       task.State `json:"to,omitempty"`
	Priority int        `json:"priority,omitempty"`
}

func (e Event) String() string {
	if e.From == "" || e.From == e.To {
		return fmt.Sprintf("Task %d %s", e.TaskID, e.Type)
	}
	return fmt.Sprintf("Task %d %s: %s -> %s", e.TaskID, e.Type, e.From, e.To)
}
