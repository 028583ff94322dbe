// Package cache implements the flux cache: a fixed-capacity, recency ordered
// page cache with least-recently-used eviction.
package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidCapacity is returned for negative capacities or non-positive
// sizing inputs.
var ErrInvalidCapacity = errors.New("cache: invalid capacity")

type entry[K comparable] struct {
	key   K
	owner int
}

// Entry is a read-only view of a cached key
type Entry[K comparable] struct {
	Key   K   `json:"key"`
	Owner int `json:"owner"`
}

// Outcome reports the result of a single access
type Outcome[K comparable] struct {
	Hit     bool
	Evicted bool
	// Victim is the expelled key when Evicted is true
	Victim K
}

// Flux is an LRU cache of page keys. Every access, read or write, promotes the
// key to most recently used. A zero capacity cache retains nothing: each
// access is a miss whose key is evicted right after loading.
type Flux[K comparable] struct {
	capacity  int
	order     *list.List // front = most recently used
	index     map[K]*list.Element
	stats     Stats
	observers []Observer[K]
	mux       sync.Mutex
}

// Option customises a Flux cache
type Option[K comparable] func(*Flux[K])

// WithObserver registers an observer notified of every event
func WithObserver[K comparable](observer Observer[K]) Option[K] {
	return func(f *Flux[K]) {
		if observer != nil {
			f.observers = append(f.observers, observer)
		}
	}
}

// New creates a cache holding at most capacity keys
func New[K comparable](capacity int, opts ...Option[K]) (*Flux[K], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	ret := &Flux[K]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// CapacityFor derives the number of cache frames from the total memory
// capacity and the cell size (floor division).
func CapacityFor(totalCapacity, cellSize int) (int, error) {
	if cellSize <= 0 {
		return 0, fmt.Errorf("%w: cell size %d", ErrInvalidCapacity, cellSize)
	}
	if totalCapacity <= 0 {
		return 0, fmt.Errorf("%w: total capacity %d", ErrInvalidCapacity, totalCapacity)
	}
	return totalCapacity / cellSize, nil
}

// Access touches key on behalf of owner
func (f *Flux[K]) Access(key K, owner int) Outcome[K] {
	f.mux.Lock()
	outcome, events := f.access(key, owner)
	observers := f.observers
	f.mux.Unlock()
	notify(observers, events)
	return outcome
}

func (f *Flux[K]) access(key K, owner int) (Outcome[K], []Event[K]) {
	if elem, ok := f.index[key]; ok {
		f.order.MoveToFront(elem)
		f.stats.Hits++
		return Outcome[K]{Hit: true}, []Event[K]{{Kind: KindHit, Key: key, Owner: elem.Value.(*entry[K]).owner}}
	}
	f.stats.Misses++
	events := []Event[K]{{Kind: KindMiss, Key: key, Owner: owner}}
	var outcome Outcome[K]
	if f.capacity == 0 {
		f.stats.Evictions++
		events = append(events,
			Event[K]{Kind: KindLoad, Key: key, Owner: owner},
			Event[K]{Kind: KindEvict, Key: key, Owner: owner, Cause: key})
		return Outcome[K]{Evicted: true, Victim: key}, events
	}
	if f.order.Len() >= f.capacity {
		victim := f.removeOldest()
		outcome.Evicted = true
		outcome.Victim = victim.key
		events = append(events, Event[K]{Kind: KindEvict, Key: victim.key, Owner: victim.owner, Cause: key})
	}
	f.index[key] = f.order.PushFront(&entry[K]{key: key, owner: owner})
	events = append(events, Event[K]{Kind: KindLoad, Key: key, Owner: owner})
	return outcome, events
}

// Evict expels the least recently used key on demand
func (f *Flux[K]) Evict() (Entry[K], bool) {
	f.mux.Lock()
	if f.order.Len() == 0 {
		f.mux.Unlock()
		return Entry[K]{}, false
	}
	victim := f.removeOldest()
	observers := f.observers
	f.mux.Unlock()
	notify(observers, []Event[K]{{Kind: KindEvict, Key: victim.key, Owner: victim.owner}})
	return Entry[K]{Key: victim.key, Owner: victim.owner}, true
}

func (f *Flux[K]) removeOldest() *entry[K] {
	elem := f.order.Back()
	victim := f.order.Remove(elem).(*entry[K])
	delete(f.index, victim.key)
	f.stats.Evictions++
	return victim
}

// Contains reports whether key is cached without promoting it
func (f *Flux[K]) Contains(key K) bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	_, ok := f.index[key]
	return ok
}

// Entries lists cached keys from least to most recently used
func (f *Flux[K]) Entries() []Entry[K] {
	f.mux.Lock()
	defer f.mux.Unlock()
	ret := make([]Entry[K], 0, f.order.Len())
	for elem := f.order.Back(); elem != nil; elem = elem.Prev() {
		e := elem.Value.(*entry[K])
		ret = append(ret, Entry[K]{Key: e.key, Owner: e.owner})
	}
	return ret
}

// Len returns the number of cached keys
func (f *Flux[K]) Len() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.order.Len()
}

// Capacity returns the fixed frame count
func (f *Flux[K]) Capacity() int {
	return f.capacity
}

// Stats returns a copy of the access counters
func (f *Flux[K]) Stats() Stats {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.stats
}

func notify[K comparable](observers []Observer[K], events []Event[K]) {
	for _, observer := range observers {
		for _, e := range events {
			observer(e)
		}
	}
}
