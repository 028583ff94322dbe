package cache

import "fmt"

// Kind classifies an observable cache event
type Kind string

const (
	// KindHit is emitted when an accessed key is already cached
	KindHit Kind = "hit"
	// KindMiss is emitted when an accessed key is absent
	KindMiss Kind = "miss"
	// KindLoad is emitted after a missed key is inserted
	KindLoad Kind = "load"
	// KindEvict is emitted when a key leaves the cache
	KindEvict Kind = "evict"
)

// Event describes a single cache observation. For KindEvict, Key is the
// expelled key and Cause the key whose load forced it out (zero when evicted
// on demand).
type Event[K comparable] struct {
	Kind  Kind `json:"kind"`
	Key   K    `json:"key"`
	Owner int  `json:"owner"`
	Cause K    `json:"cause,omitempty"`
}

func (e Event[K]) String() string {
	switch e.Kind {
	case KindHit:
		return fmt.Sprintf("Flux Hit: Block %v", e.Key)
	case KindLoad:
		return fmt.Sprintf("Flux Load: Block %v", e.Key)
	case KindEvict:
		return fmt.Sprintf("Flux Shift: Expelled %v for %v", e.Key, e.Cause)
	default:
		return fmt.Sprintf("Flux Miss: Block %v", e.Key)
	}
}

// Observer receives cache events in emission order
type Observer[K comparable] func(Event[K])

// Stats aggregates access counters
type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
}

// HitRatio returns hits over total accesses, 0 when nothing was accessed
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
