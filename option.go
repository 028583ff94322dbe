package ossim

import (
	"io"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/event"
	"github.com/farxan99/OsSimulator/service/meta"
	"github.com/farxan99/OsSimulator/tracing"
)

// Option customises the simulator service
type Option func(s *Service)

// WithConfig sets the configuration; DefaultConfig is used otherwise
func WithConfig(cfg *Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the logger shared by every component
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLogWriter builds the logger at the configured level writing to w
func WithLogWriter(w io.Writer) Option {
	return func(s *Service) {
		s.logWriter = w
	}
}

// WithEventService sets the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithTaskStore replaces the in-memory task table
func WithTaskStore(store dao.Service[task.ID, task.Task]) Option {
	return func(s *Service) {
		s.taskStore = store
	}
}

// WithMetaService sets the resource loader used for scripts and snapshots
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL relative resources are resolved against
func WithMetaBaseURL(URL string, options ...storage.Option) Option {
	return func(s *Service) {
		s.metaService = meta.New(afs.New(), URL, options...)
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}
