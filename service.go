package ossim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/farxan99/OsSimulator/internal/idgen"
	"github.com/farxan99/OsSimulator/internal/logging"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/event"
	"github.com/farxan99/OsSimulator/service/kernel"
	"github.com/farxan99/OsSimulator/service/messaging"
	"github.com/farxan99/OsSimulator/service/meta"
)

// Service wires the simulator components
type Service struct {
	config       *Config
	logger       *slog.Logger
	logWriter    io.Writer
	eventService *event.Service
	metaService  *meta.Service
	taskStore    dao.Service[task.ID, task.Task]
	runtime      *Runtime
	initErrors   []error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if len(s.initErrors) > 0 {
		return errors.Join(s.initErrors...)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.ensureBaseSetup()

	kernelOptions := []kernel.Option{
		kernel.WithLogger(s.logger),
		kernel.WithEventService(s.eventService),
	}
	if s.taskStore != nil {
		kernelOptions = append(kernelOptions, kernel.WithTaskStore(s.taskStore))
	}
	aKernel, err := kernel.New(s.config.kernelConfig(), kernelOptions...)
	if err != nil {
		return fmt.Errorf("failed to create kernel: %w", err)
	}
	s.runtime.kernel = aKernel
	s.runtime.logger = s.logger
	s.runtime.dispatcherConfig = s.config.dispatcherConfig()
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		if s.logWriter != nil {
			s.logger = logging.New(s.logWriter, s.config.Log.Level)
		} else {
			s.logger = logging.Discard()
		}
	}
	if s.eventService == nil {
		// memory vendor never fails
		s.eventService, _ = event.New(messaging.VendorMemory, event.WithInstanceID(idgen.New()))
	}
	if s.metaService == nil {
		s.metaService = meta.New(nil, "")
	}
}

// Runtime returns the simulator runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Events returns the event service carrying kernel and cache events
func (s *Service) Events() *event.Service {
	return s.eventService
}

// Meta returns the resource loader
func (s *Service) Meta() *meta.Service {
	return s.metaService
}

// Logger returns the shared logger
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// Close stops event listeners
func (s *Service) Close() {
	s.eventService.Close()
}

// New creates the simulator service
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig(), runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

