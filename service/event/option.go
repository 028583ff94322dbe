package event

import (
	"github.com/farxan99/OsSimulator/service/messaging/memory"
)

type Option func(s *Service)

// WithNewMemoryQueueConfig sets the memory queue configuration factory
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}

// WithInstanceID sets the identifier stamped on events that carry no context
func WithInstanceID(id string) Option {
	return func(s *Service) {
		s.instanceID = id
	}
}
