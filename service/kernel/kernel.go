package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/farxan99/OsSimulator/internal/clock"
	"github.com/farxan99/OsSimulator/internal/idgen"
	"github.com/farxan99/OsSimulator/internal/logging"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/progress"
	"github.com/farxan99/OsSimulator/service/allocator"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/dao/task/memory"
	"github.com/farxan99/OsSimulator/service/event"
	"github.com/farxan99/OsSimulator/service/scheduler"
	"github.com/farxan99/OsSimulator/tracing"
)

// Config represents kernel configuration
type Config struct {
	// PageSize is the memory cell size
	PageSize int
	// TotalCapacity is the memory backing the flux cache
	TotalCapacity int
	// Owner labels tasks created through CreateTask and Submit
	Owner string
}

// DefaultConfig returns the default kernel configuration
func DefaultConfig() Config {
	allocatorConfig := allocator.DefaultConfig()
	return Config{
		PageSize:      allocatorConfig.CellSize,
		TotalCapacity: allocatorConfig.TotalCapacity,
		Owner:         task.DefaultOwner,
	}
}

// Service is the scheduling kernel
type Service struct {
	config       Config
	instanceID   string
	allocator    *allocator.Service
	tasks        dao.Service[task.ID, task.Task]
	newQueue     queue
	ready        queue
	blocked      queue
	sequence     idgen.Sequence
	progress     *progress.Progress
	eventService *event.Service
	publisher    *event.Publisher[Event]
	logger       *slog.Logger
	mux          sync.Mutex
}

// New creates a kernel with an empty task table
func New(config Config, opts ...Option) (*Service, error) {
	if config.Owner == "" {
		config.Owner = task.DefaultOwner
	}
	ret := &Service{
		config:     config,
		instanceID: idgen.New(),
		tasks:      memory.New(),
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.progress == nil {
		ret.progress = progress.New(ret.instanceID, nil)
	}
	allocatorOptions := []allocator.Option{allocator.WithLogger(ret.logger)}
	if ret.eventService != nil {
		ret.instanceID = ret.eventService.InstanceID()
		var err error
		if ret.publisher, err = event.PublisherOf[Event](ret.eventService); err != nil {
			return nil, fmt.Errorf("failed to create kernel event publisher: %w", err)
		}
		allocatorOptions = append(allocatorOptions, allocator.WithEventService(ret.eventService))
	}
	var err error
	ret.allocator, err = allocator.New(allocator.Config{
		CellSize:      config.PageSize,
		TotalCapacity: config.TotalCapacity,
		Magnitude:     allocator.DefaultMagnitude,
	}, allocatorOptions...)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CreateTask allocates a task, assigns its memory region and places it
// directly in the ready queue.
func (s *Service) CreateTask(ctx context.Context, burstTime, arrivalTime, priority int) (task.ID, error) {
	return s.create(ctx, task.StateReady, burstTime, arrivalTime, priority)
}

// Submit allocates a task in state New and appends it to the new arrivals
// queue; AdmitNewArrivals moves it to ready.
func (s *Service) Submit(ctx context.Context, burstTime, arrivalTime, priority int) (task.ID, error) {
	return s.create(ctx, task.StateNew, burstTime, arrivalTime, priority)
}

func (s *Service) create(ctx context.Context, state task.State, burstTime, arrivalTime, priority int) (id task.ID, err error) {
	ctx, span := tracing.StartSpan(ctx, "kernel.create")
	defer func() { tracing.EndSpan(span, err) }()

	s.mux.Lock()
	defer s.mux.Unlock()

	id = task.ID(s.sequence.Next())
	span.SetInt("task.id", int(id))
	if _, err = s.allocator.Allocate(ctx, id); err != nil {
		return 0, fmt.Errorf("failed to allocate memory for task %d: %w", id, err)
	}
	aTask := task.New(id, state, s.config.Owner, priority, burstTime, arrivalTime, clock.Now())
	if err = s.tasks.Save(ctx, aTask); err != nil {
		s.allocator.Release(id)
		return 0, err
	}
	delta := progress.Delta{Created: 1}
	eventType := EventCreated
	if state == task.StateNew {
		s.newQueue.push(id)
		delta.New = 1
		eventType = EventSubmitted
	} else {
		s.ready.push(id)
		delta.Ready = 1
	}
	s.progress.Update(delta)
	s.publish(ctx, Event{Type: eventType, TaskID: id, To: state, Priority: priority})
	s.logger.DebugContext(ctx, "task created", "task", id, "state", state, "burst", burstTime)
	return id, nil
}

// DestroyTask removes the task from the table and every queue
func (s *Service) DestroyTask(ctx context.Context, id task.ID) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, ok := s.load(ctx, id)
	if !ok {
		return false
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return false
	}
	delta := progress.Delta{Destroyed: 1}
	if s.newQueue.remove(id) {
		delta.New = -1
	}
	if s.ready.remove(id) {
		delta.Ready = -1
	}
	if s.blocked.remove(id) {
		delta.Waiting = -1
	}
	s.allocator.Release(id)
	s.progress.Update(delta)
	s.publish(ctx, Event{Type: EventDestroyed, TaskID: id, From: aTask.State})
	s.logger.InfoContext(ctx, "task destroyed", "task", id)
	return true
}

// SuspendTask moves a ready task to the blocked queue labelled Suspended
func (s *Service) SuspendTask(ctx context.Context, id task.ID) bool {
	return s.park(ctx, id, task.StateSuspended)
}

// BlockTask moves a ready task to the blocked queue labelled Blocked
func (s *Service) BlockTask(ctx context.Context, id task.ID) bool {
	return s.park(ctx, id, task.StateBlocked)
}

// ResumeTask returns a suspended or blocked task to the ready queue
func (s *Service) ResumeTask(ctx context.Context, id task.ID) bool {
	return s.release(ctx, id)
}

// WakeupTask returns a blocked or suspended task to the ready queue
func (s *Service) WakeupTask(ctx context.Context, id task.ID) bool {
	return s.release(ctx, id)
}

func (s *Service) park(ctx context.Context, id task.ID, state task.State) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, ok := s.load(ctx, id)
	if !ok || !s.ready.remove(id) {
		return false
	}
	from := aTask.State
	aTask.SetState(state, clock.Now())
	s.blocked.push(id)
	s.progress.Update(progress.Delta{Ready: -1, Waiting: 1})
	s.publish(ctx, Event{Type: EventWaiting, TaskID: id, From: from, To: state})
	s.logger.DebugContext(ctx, "task parked", "task", id, "state", state)
	return true
}

func (s *Service) release(ctx context.Context, id task.ID) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, ok := s.load(ctx, id)
	if !ok || !s.blocked.remove(id) {
		return false
	}
	from := aTask.State
	aTask.SetState(task.StateReady, clock.Now())
	s.ready.push(id)
	s.progress.Update(progress.Delta{Ready: 1, Waiting: -1})
	s.publish(ctx, Event{Type: EventResumed, TaskID: id, From: from, To: task.StateReady})
	s.logger.DebugContext(ctx, "task released", "task", id)
	return true
}

// ChangePriority updates the priority of any live task
func (s *Service) ChangePriority(ctx context.Context, id task.ID, priority int) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, ok := s.load(ctx, id)
	if !ok {
		return false
	}
	aTask.Priority = priority
	aTask.UpdatedAt = clock.Now()
	s.publish(ctx, Event{Type: EventPriority, TaskID: id, From: aTask.State, To: aTask.State, Priority: priority})
	return true
}

// AdmitNewArrivals drains the new queue into the ready queue in FIFO order and
// returns the number of admitted tasks.
func (s *Service) AdmitNewArrivals(ctx context.Context) int {
	ctx, span := tracing.StartSpan(ctx, "kernel.admit")
	defer tracing.EndSpan(span, nil)

	s.mux.Lock()
	defer s.mux.Unlock()
	admitted := 0
	now := clock.Now()
	for _, id := range s.newQueue.drain() {
		aTask, ok := s.load(ctx, id)
		if !ok {
			continue
		}
		aTask.SetState(task.StateReady, now)
		s.ready.push(id)
		admitted++
		s.publish(ctx, Event{Type: EventAdmitted, TaskID: id, From: task.StateNew, To: task.StateReady})
	}
	if admitted > 0 {
		s.progress.Update(progress.Delta{Admitted: admitted, New: -admitted, Ready: admitted})
		s.logger.DebugContext(ctx, "admitted new arrivals", "count", admitted)
	}
	span.SetInt("admitted", admitted)
	return admitted
}

// Select removes the task chosen by algorithm from the ready queue and
// returns a copy of it. The task stays in the table in state Ready. A nil task
// means the ready queue is empty.
func (s *Service) Select(ctx context.Context, algorithm string) (*task.Task, error) {
	policy, err := lookup(algorithm)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	selected := s.selectLocked(ctx, policy)
	if selected == nil {
		return nil, nil
	}
	s.publish(ctx, Event{Type: EventSelected, TaskID: selected.ID, From: task.StateReady, To: task.StateReady})
	return selected.Clone(), nil
}

// DispatchOne selects a ready task with algorithm and runs it to completion:
// Ready, Processing, Terminated. The terminated task leaves the table and its
// region is released. A nil task means nothing was selected.
func (s *Service) DispatchOne(ctx context.Context, algorithm string) (dispatched *task.Task, err error) {
	policy, err := lookup(algorithm)
	if err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "kernel.dispatch")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"algorithm": policy.Name()})

	s.mux.Lock()
	defer s.mux.Unlock()
	return s.dispatchLocked(ctx, policy), nil
}

// DispatchAll dispatches until the ready queue is empty and returns the
// number of terminated tasks.
func (s *Service) DispatchAll(ctx context.Context, algorithm string) (int, error) {
	policy, err := lookup(algorithm)
	if err != nil {
		return 0, err
	}
	ctx, span := tracing.StartSpan(ctx, "kernel.dispatchAll")
	defer tracing.EndSpan(span, nil)

	s.mux.Lock()
	defer s.mux.Unlock()
	count := 0
	for s.ready.len() > 0 {
		if s.dispatchLocked(ctx, policy) == nil {
			break
		}
		count++
	}
	span.SetInt("dispatched", count)
	return count, nil
}

func (s *Service) dispatchLocked(ctx context.Context, policy scheduler.Policy) *task.Task {
	selected := s.selectLocked(ctx, policy)
	if selected == nil {
		return nil
	}
	selected.SetState(task.StateProcessing, clock.Now())
	s.publish(ctx, Event{Type: EventProcessing, TaskID: selected.ID, From: task.StateReady, To: task.StateProcessing})
	selected.SetState(task.StateTerminated, clock.Now())
	if err := s.tasks.Delete(ctx, selected.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove terminated task", "task", selected.ID, "err", err)
	}
	s.allocator.Release(selected.ID)
	s.progress.Update(progress.Delta{Dispatched: 1, Terminated: 1})
	s.publish(ctx, Event{Type: EventTerminated, TaskID: selected.ID, From: task.StateProcessing, To: task.StateTerminated})
	s.logger.InfoContext(ctx, "task dispatched", "task", selected.ID, "algorithm", policy.Name(), "burst", selected.BurstTime)
	return selected.Clone()
}

// selectLocked removes the chosen task from the ready queue
func (s *Service) selectLocked(ctx context.Context, policy scheduler.Policy) *task.Task {
	if s.ready.len() == 0 {
		return nil
	}
	candidates := make([]*task.Task, 0, s.ready.len())
	for _, id := range s.ready.ids {
		aTask, ok := s.load(ctx, id)
		if !ok {
			// keep index alignment with the queue
			aTask = &task.Task{ID: id, State: task.StateReady}
		}
		candidates = append(candidates, aTask)
	}
	index := policy.Select(candidates)
	if index < 0 || index >= len(candidates) {
		return nil
	}
	s.ready.removeAt(index)
	s.progress.Update(progress.Delta{Ready: -1})
	return candidates[index]
}

func (s *Service) load(ctx context.Context, id task.ID) (*task.Task, bool) {
	aTask, err := s.tasks.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, dao.ErrNotFound) && !errors.Is(err, dao.ErrInvalidID) {
			s.logger.WarnContext(ctx, "failed to load task", "task", id, "err", err)
		}
		return nil, false
	}
	return aTask, aTask != nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	if s.publisher == nil {
		return
	}
	eCtx := &event.Context{
		InstanceID: s.instanceID,
		TaskID:     int(e.TaskID),
		EventType:  string(e.Type),
		Source:     "kernel",
	}
	if err := s.publisher.Publish(ctx, event.NewEvent(eCtx, e)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish kernel event", "event", e.Type, "err", err)
	}
}

func lookup(algorithm string) (scheduler.Policy, error) {
	policy, ok := scheduler.Lookup(algorithm)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	return policy, nil
}

// Task returns a copy of the task stored under id
func (s *Service) Task(ctx context.Context, id task.ID) (*task.Task, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, ok := s.load(ctx, id)
	if !ok {
		return nil, false
	}
	return aTask.Clone(), true
}

// Tasks returns copies of every live task ordered by ID
func (s *Service) Tasks(ctx context.Context, parameters ...*dao.Parameter) []*task.Task {
	s.mux.Lock()
	defer s.mux.Unlock()
	tasks, err := s.tasks.List(ctx, parameters...)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list tasks", "err", err)
		return nil
	}
	ret := make([]*task.Task, 0, len(tasks))
	for _, aTask := range tasks {
		ret = append(ret, aTask.Clone())
	}
	return ret
}

// ReadyQueue returns the ready queue IDs in order
func (s *Service) ReadyQueue() []task.ID {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.ready.snapshot()
}

// BlockedQueue returns the blocked queue IDs in order
func (s *Service) BlockedQueue() []task.ID {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.blocked.snapshot()
}

// NewQueue returns the new arrivals queue IDs in order
func (s *Service) NewQueue() []task.ID {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.newQueue.snapshot()
}

// PageSize returns the configured memory cell size
func (s *Service) PageSize() int {
	return s.allocator.PageSize()
}

// Allocator returns the memory cell allocator
func (s *Service) Allocator() *allocator.Service {
	return s.allocator
}

// Progress returns a snapshot of the kernel counters
func (s *Service) Progress() progress.Progress {
	return s.progress.Snapshot()
}

// InstanceID identifies the kernel instance
func (s *Service) InstanceID() string {
	return s.instanceID
}
