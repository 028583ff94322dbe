package kernel

import (
	"log/slog"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/progress"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/event"
)

// Option customises the kernel
type Option func(s *Service)

// WithLogger sets the kernel logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventService publishes kernel and cache events through service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithTaskStore replaces the in-memory task table
func WithTaskStore(store dao.Service[task.ID, task.Task]) Option {
	return func(s *Service) {
		if store != nil {
			s.tasks = store
		}
	}
}

// WithProgress sets the counter tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		if tracker != nil {
			s.progress = tracker
		}
	}
}
