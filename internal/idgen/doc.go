// Package idgen generates identifiers: opaque UUID strings for instances,
// events and messages, and monotonic integer sequences for task IDs.
// It lives under `internal` because callers should treat opaque identifiers as
// plain strings and must not depend on their format.
package idgen
