package ossim

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farxan99/OsSimulator/internal/logging"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/allocator"
	"github.com/farxan99/OsSimulator/service/dispatcher"
	"github.com/farxan99/OsSimulator/service/kernel"
	"github.com/farxan99/OsSimulator/service/meta"
	"github.com/farxan99/OsSimulator/service/scheduler"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is a serialisable representation of the simulator configuration. It
// can be populated from YAML, JSON or the legacy Key=Value format.
type Config struct {
	Memory     MemoryConfig     `json:"memory" yaml:"memory"`
	Kernel     KernelConfig     `json:"kernel" yaml:"kernel"`
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type MemoryConfig struct {
	PageSize      int `json:"pageSize" yaml:"pageSize"`
	TotalCapacity int `json:"totalCapacity" yaml:"totalCapacity"`
}

type KernelConfig struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Owner     string `json:"owner" yaml:"owner"`
}

type DispatcherConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
	Rate     float64       `json:"rate" yaml:"rate"`
	Burst    int           `json:"burst" yaml:"burst"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultConfig returns the documented defaults: 4096 byte pages and 1024
// bytes of total capacity.
func DefaultConfig() *Config {
	memory := allocator.DefaultConfig()
	dispatch := dispatcher.DefaultConfig()
	return &Config{
		Memory: MemoryConfig{
			PageSize:      memory.CellSize,
			TotalCapacity: memory.TotalCapacity,
		},
		Kernel: KernelConfig{
			Algorithm: scheduler.NameFCFS,
			Owner:     task.DefaultOwner,
		},
		Dispatcher: DispatcherConfig{
			Interval: dispatch.PollingInterval,
			Burst:    dispatch.Burst,
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Memory.PageSize <= 0 {
		return fmt.Errorf("%w: memory.pageSize must be > 0, got %d", ErrInvalidConfig, c.Memory.PageSize)
	}
	if c.Memory.TotalCapacity <= 0 {
		return fmt.Errorf("%w: memory.totalCapacity must be > 0, got %d", ErrInvalidConfig, c.Memory.TotalCapacity)
	}
	if _, ok := scheduler.Lookup(c.Kernel.Algorithm); !ok {
		return fmt.Errorf("%w: kernel.algorithm %q is not one of %v", ErrInvalidConfig, c.Kernel.Algorithm, scheduler.Names())
	}
	if c.Dispatcher.Interval < 0 {
		return fmt.Errorf("%w: dispatcher.interval must not be negative", ErrInvalidConfig)
	}
	if c.Dispatcher.Rate < 0 {
		return fmt.Errorf("%w: dispatcher.rate must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// kernelConfig returns the kernel construction settings
func (c *Config) kernelConfig() kernel.Config {
	return kernel.Config{
		PageSize:      c.Memory.PageSize,
		TotalCapacity: c.Memory.TotalCapacity,
		Owner:         c.Kernel.Owner,
	}
}

func (c *Config) dispatcherConfig() dispatcher.Config {
	return dispatcher.Config{
		Algorithm:       c.Kernel.Algorithm,
		PollingInterval: c.Dispatcher.Interval,
		Rate:            c.Dispatcher.Rate,
		Burst:           c.Dispatcher.Burst,
	}
}

// LoadConfig loads the configuration stored at URL. A missing resource yields
// the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	return LoadConfigFrom(ctx, meta.New(nil, ""), URL)
}

// LoadConfigFrom loads the configuration through metaService
func LoadConfigFrom(ctx context.Context, metaService *meta.Service, URL string) (*Config, error) {
	cfg := DefaultConfig()
	data, ok, err := metaService.Load(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	if !ok {
		return cfg, nil
	}
	if err = DecodeConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig decodes YAML, JSON or legacy Key=Value content over cfg
func DecodeConfig(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if isLegacy(data) {
		return decodeLegacy(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// isLegacy reports whether every meaningful line is a Key=Value pair
func isLegacy(data []byte) bool {
	legacy := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "=") || strings.Contains(line, ":") {
			return false
		}
		legacy = true
	}
	return legacy
}

// decodeLegacy reads PageSize/CellSize and TotalMemory/TotalCapacity; the
// first occurrence of each setting wins.
func decodeLegacy(data []byte, cfg *Config) error {
	var pageSet, capacitySet bool
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		var target *int
		switch {
		case !pageSet && (strings.HasPrefix(key, "PageSize") || strings.HasPrefix(key, "CellSize")):
			target, pageSet = &cfg.Memory.PageSize, true
		case !capacitySet && (strings.HasPrefix(key, "TotalMemory") || strings.HasPrefix(key, "TotalCapacity")):
			target, capacitySet = &cfg.Memory.TotalCapacity, true
		default:
			continue
		}
		value, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid %v value: %w", key, err)
		}
		*target = value
	}
	return scanner.Err()
}
