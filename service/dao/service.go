// Package dao defines the generic storage contract used by the kernel task
// table.
package dao

import (
	"context"
)

// Service stores records of type T keyed by K
type Service[K comparable, T any] interface {
	// Save inserts or replaces the record; a nil record yields ErrNilEntity
	Save(ctx context.Context, t *T) error

	// Load returns ErrNotFound when nothing is stored under id
	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	// List returns records matching every parameter, ordered by key
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)

	// Len returns the number of stored records
	Len() int
}
