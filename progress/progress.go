package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the kernel. Queue
// gauges are signed so a transition can move a task from one to another.
type Delta struct {
	Created    int
	Admitted   int
	Dispatched int
	Terminated int
	Destroyed  int

	New     int
	Ready   int
	Waiting int
}

// Progress keeps aggregated kernel counters. It is safe for concurrent use.
type Progress struct {
	InstanceID string
	StartedAt  time.Time

	// Cumulative counters
	CreatedTasks    int
	AdmittedTasks   int
	DispatchedTasks int
	TerminatedTasks int
	DestroyedTasks  int

	// Queue gauges
	NewTasks     int
	ReadyTasks   int
	WaitingTasks int

	sync.Mutex
	onChange func(Progress)
}

// New creates a tracker
func New(instanceID string, onChange func(Progress)) *Progress {
	return &Progress{InstanceID: instanceID, StartedAt: time.Now(), onChange: onChange}
}

// Update applies the supplied delta. The onChange callback, if any, receives a
// copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()

	p.CreatedTasks += d.Created
	p.AdmittedTasks += d.Admitted
	p.DispatchedTasks += d.Dispatched
	p.TerminatedTasks += d.Terminated
	p.DestroyedTasks += d.Destroyed
	p.NewTasks += d.New
	p.ReadyTasks += d.Ready
	p.WaitingTasks += d.Waiting

	snapshot := p.copy()
	cb := p.onChange

	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Live returns the number of tasks still in the table
func (p *Progress) Live() int {
	return p.CreatedTasks - p.TerminatedTasks - p.DestroyedTasks
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

func (p *Progress) copy() Progress {
	return Progress{
		InstanceID:      p.InstanceID,
		StartedAt:       p.StartedAt,
		CreatedTasks:    p.CreatedTasks,
		AdmittedTasks:   p.AdmittedTasks,
		DispatchedTasks: p.DispatchedTasks,
		TerminatedTasks: p.TerminatedTasks,
		DestroyedTasks:  p.DestroyedTasks,
		NewTasks:        p.NewTasks,
		ReadyTasks:      p.ReadyTasks,
		WaitingTasks:    p.WaitingTasks,
	}
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in a derived context
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
