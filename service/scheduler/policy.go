package scheduler

import (
	"sort"
	"strings"
	"sync"

	"github.com/farxan99/OsSimulator/model/task"
)

// Policy names recognised out of the box.
const (
	NameFCFS = "FCFS" // first come, first served
	NameSJF  = "SJF"  // shortest job first
)

// Policy selects the next task from the ready queue. Select returns the index
// of the chosen task in ready, or -1 when ready is empty.
type Policy interface {
	Name() string
	Select(ready []*task.Task) int
}

// Func adapts a selection function to Policy
type Func struct {
	name     string
	selectFn func(ready []*task.Task) int
}

// NewFunc creates a named policy
func NewFunc(name string, fn func(ready []*task.Task) int) *Func {
	return &Func{name: name, selectFn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Select(ready []*task.Task) int {
	if len(ready) == 0 {
		return -1
	}
	return f.selectFn(ready)
}

// FCFS returns the policy picking the head of the ready queue
func FCFS() Policy {
	return NewFunc(NameFCFS, func([]*task.Task) int { return 0 })
}

// SJF returns the policy picking the smallest burst time; ties go to the task
// that entered the ready queue first.
func SJF() Policy {
	return NewFunc(NameSJF, func(ready []*task.Task) int {
		selected := 0
		for i := 1; i < len(ready); i++ {
			if ready[i].BurstTime < ready[selected].BurstTime {
				selected = i
			}
		}
		return selected
	})
}

var (
	registryMux sync.RWMutex
	registry    = map[string]Policy{
		NameFCFS: FCFS(),
		NameSJF:  SJF(),
	}
)

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Lookup returns the policy registered under name (case-insensitive)
func Lookup(name string) (Policy, bool) {
	registryMux.RLock()
	defer registryMux.RUnlock()
	p, ok := registry[normalize(name)]
	return p, ok
}

// Register adds or replaces a policy
func Register(p Policy) {
	if p == nil {
		return
	}
	registryMux.Lock()
	registry[normalize(p.Name())] = p
	registryMux.Unlock()
}

// Names lists registered policy names in sorted order
func Names() []string {
	registryMux.RLock()
	ret := make([]string, 0, len(registry))
	for name := range registry {
		ret = append(ret, name)
	}
	registryMux.RUnlock()
	sort.Strings(ret)
	return ret
}
