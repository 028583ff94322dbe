// Package task defines the schedulable unit managed by the kernel.
package task

import (
	"fmt"
	"time"
)

// DefaultOwner is the owner label assigned to tasks created without one.
const DefaultOwner = "User"

// ID identifies a task for the lifetime of a kernel instance.
type ID int

// Task represents a schedulable unit of work
type Task struct {
	ID          ID        `json:"id" yaml:"id"`
	State       State     `json:"state" yaml:"state"`
	Owner       string    `json:"owner" yaml:"owner"`
	Priority    int       `json:"priority" yaml:"priority"`
	BurstTime   int       `json:"burstTime" yaml:"burstTime"`
	ArrivalTime int       `json:"arrivalTime" yaml:"arrivalTime"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// New creates a task in the supplied state
func New(id ID, state State, owner string, priority, burstTime, arrivalTime int, now time.Time) *Task {
	if owner == "" {
		owner = DefaultOwner
	}
	return &Task{
		ID:          id,
		State:       state,
		Owner:       owner,
		Priority:    priority,
		BurstTime:   burstTime,
		ArrivalTime: arrivalTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetState transitions the task and stamps the update time
func (t *Task) SetState(state State, now time.Time) {
	t.State = state
	t.UpdatedAt = now
}

// Clone returns a detached copy suitable for read-only views
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	ret := *t
	return &ret
}

func (t *Task) String() string {
	return fmt.Sprintf("Task ID: %d, State: %s, Owner: %s, Priority: %d, Burst Time: %d, Arrival Time: %d",
		t.ID, t.State, t.Owner, t.Priority, t.BurstTime, t.ArrivalTime)
}
