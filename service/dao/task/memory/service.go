// Package memory implements the in-memory task table.
package memory

import (
	"context"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/dao/criteria"
	"github.com/farxan99/OsSimulator/service/dao/store"
)

// Service is the authoritative ID to task table. Records are stored by
// pointer: the table owns every task, callers needing a stable view Clone it.
type Service struct {
	store *store.MemoryStore[task.ID, task.Task]
}

var _ dao.Service[task.ID, task.Task] = (*Service)(nil)

func (s *Service) Save(ctx context.Context, t *task.Task) error {
	if t == nil {
		return dao.ErrNilEntity
	}
	if t.ID <= 0 {
		return dao.ErrInvalidID
	}
	return s.store.Save(ctx, t)
}

func (s *Service) Load(ctx context.Context, id task.ID) (*task.Task, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	return s.store.Load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id task.ID) error {
	if id <= 0 {
		return dao.ErrInvalidID
	}
	return s.store.Delete(ctx, id)
}

// List returns tasks ordered by ID, filtered by State and Owner parameters
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*task.Task, error) {
	return s.store.Filter(func(t *task.Task) bool {
		return criteria.FilterByState(string(t.State), parameters) &&
			criteria.FilterByOwner(t.Owner, parameters)
	}), nil
}

// Len returns the number of live tasks
func (s *Service) Len() int {
	return s.store.Len()
}

func New() *Service {
	return &Service{store: store.NewMemoryStore[task.ID, task.Task](
		func(t *task.Task) task.ID { return t.ID },
		func(a, b *task.Task) bool { return a.ID < b.ID },
	)}
}
