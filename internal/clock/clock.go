// Package clock provides the kernel time source. Tests swap NowFunc or call
// Freeze for deterministic timestamps.
package clock

import "time"

// NowFunc returns current time.
var NowFunc = time.Now

// Now returns the current kernel time.
func Now() time.Time { return NowFunc() }

// Freeze pins Now to at and returns a function restoring the previous source.
func Freeze(at time.Time) (restore func()) {
	prev := NowFunc
	NowFunc = func() time.Time { return at }
	return func() { NowFunc = prev }
}
