package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/farxan99/OsSimulator/internal/logging"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/cache"
	"github.com/farxan99/OsSimulator/service/event"
	"github.com/farxan99/OsSimulator/tracing"
)

// DefaultMagnitude is the simulated memory size of every task region
const DefaultMagnitude = 4096

// Config represents allocator service configuration
type Config struct {
	// CellSize is the size of a single cell unit (page size)
	CellSize int
	// TotalCapacity is the memory capacity backing the flux cache
	TotalCapacity int
	// Magnitude is the region size assigned to every task
	Magnitude int
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		CellSize:      4096,
		TotalCapacity: 1024,
		Magnitude:     DefaultMagnitude,
	}
}

// Validate reports invalid sizing before any division takes place
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCellSize, c.CellSize)
	}
	if c.TotalCapacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.TotalCapacity)
	}
	count, err := UnitCount(c.Magnitude, c.CellSize)
	if err != nil {
		return err
	}
	if count > MaxRegionCells {
		return fmt.Errorf("%w: %d needs %d cells, limit %d", ErrInvalidMagnitude, c.Magnitude, count, MaxRegionCells)
	}
	return nil
}

// Option customises the allocator
type Option func(s *Service)

// WithEventService publishes every cache event through the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithLogger sets the allocator logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCacheObserver registers a synchronous cache observer
func WithCacheObserver(observer cache.Observer[Page]) Option {
	return func(s *Service) {
		s.observers = append(s.observers, observer)
	}
}

// Service allocates memory regions to tasks
type Service struct {
	config       Config
	regions      map[task.ID]*Region
	flux         *cache.Flux[Page]
	eventService *event.Service
	publisher    *event.Publisher[cache.Event[Page]]
	observers    []cache.Observer[Page]
	logger       *slog.Logger
	mux          sync.RWMutex
}

// New creates an allocator and its flux cache sized total/cell frames
func New(config Config, opts ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{
		config:  config,
		regions: make(map[task.ID]*Region),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	capacity, err := cache.CapacityFor(config.TotalCapacity, config.CellSize)
	if err != nil {
		return nil, err
	}
	if ret.eventService != nil {
		if ret.publisher, err = event.PublisherOf[cache.Event[Page]](ret.eventService); err != nil {
			return nil, fmt.Errorf("failed to create cache event publisher: %w", err)
		}
	}
	cacheOptions := []cache.Option[Page]{cache.WithObserver(ret.onCacheEvent)}
	for _, observer := range ret.observers {
		cacheOptions = append(cacheOptions, cache.WithObserver(observer))
	}
	if ret.flux, err = cache.New[Page](capacity, cacheOptions...); err != nil {
		return nil, err
	}
	return ret, nil
}

// Allocate creates the region of taskID and touches every unit in the cache
func (s *Service) Allocate(ctx context.Context, taskID task.ID) (*Region, error) {
	return s.allocate(ctx, taskID, s.config.Magnitude, true)
}

// Provision touches an ad-hoc region of the supplied magnitude on behalf of
// owner. The region is not recorded.
func (s *Service) Provision(ctx context.Context, owner task.ID, magnitude int) (*Region, error) {
	return s.allocate(ctx, owner, magnitude, false)
}

func (s *Service) allocate(ctx context.Context, taskID task.ID, magnitude int, record bool) (region *Region, err error) {
	ctx, span := tracing.StartSpan(ctx, "allocator.allocate")
	defer func() { tracing.EndSpan(span, err) }()
	span.SetInt("task.id", int(taskID)).SetInt("magnitude", magnitude)

	if region, err = newRegion(taskID, magnitude, s.config.CellSize); err != nil {
		return nil, err
	}
	if record {
		s.mux.Lock()
		s.regions[taskID] = region
		s.mux.Unlock()
	}
	evictions := 0
	for _, cell := range region.Cells {
		if outcome := s.flux.Access(cell.Page, int(taskID)); outcome.Evicted {
			evictions++
		}
	}
	span.SetInt("cells", region.Len()).SetInt("evictions", evictions)
	s.logger.DebugContext(ctx, "allocated region", "task", taskID, "cells", region.Len(), "evictions", evictions)
	return region, nil
}

// Release forgets the region of taskID; cached pages age out naturally
func (s *Service) Release(taskID task.ID) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.regions[taskID]; !ok {
		return false
	}
	delete(s.regions, taskID)
	return true
}

// Region returns the region recorded for taskID
func (s *Service) Region(taskID task.ID) (*Region, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	region, ok := s.regions[taskID]
	return region, ok
}

// Regions lists recorded regions ordered by task ID
func (s *Service) Regions() []*Region {
	s.mux.RLock()
	ret := make([]*Region, 0, len(s.regions))
	for _, region := range s.regions {
		ret = append(ret, region)
	}
	s.mux.RUnlock()
	sort.Slice(ret, func(i, j int) bool { return ret[i].TaskID < ret[j].TaskID })
	return ret
}

// PageSize returns the configured cell size
func (s *Service) PageSize() int {
	return s.config.CellSize
}

// Config returns the allocator configuration
func (s *Service) Config() Config {
	return s.config
}

// Cache returns the shared flux cache
func (s *Service) Cache() *cache.Flux[Page] {
	return s.flux
}

func (s *Service) onCacheEvent(e cache.Event[Page]) {
	if e.Kind == cache.KindEvict {
		s.logger.Debug(e.String(), "owner", e.Owner)
	}
	if s.publisher == nil {
		return
	}
	eCtx := &event.Context{
		InstanceID: s.eventService.InstanceID(),
		TaskID:     e.Owner,
		EventType:  string(e.Kind),
		Source:     "flux",
	}
	if err := s.publisher.Publish(context.Background(), event.NewEvent(eCtx, e)); err != nil {
		s.logger.Warn("failed to publish cache event", "err", err)
	}
}
