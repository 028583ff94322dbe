package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier; override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }

// Sequence hands out strictly increasing integers starting at 1. Values are
// never reused.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next value of the sequence.
func (s *Sequence) Next() int {
	return int(s.last.Add(1))
}

// Last returns the most recently issued value, 0 if none.
func (s *Sequence) Last() int {
	return int(s.last.Load())
}
