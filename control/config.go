// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration of thread backends and the snapshot store with
// reload listeners.

package control

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/caarlos0/env/v6"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Cancellation modes accepted in Config.Cancellation.
const (
	CancellationDefault     = ""
	CancellationCooperative = "cooperative"
	CancellationLiveness    = "liveness"
)

// Config holds runtime knobs. Compile-time inputs (default stack size,
// constrained targets) live in package api.
type Config struct {
	// MaxThreads caps live created threads; 0 keeps the built-in ceiling.
	MaxThreads int `yaml:"max_threads" env:"HIOLOAD_THREAD_MAX_THREADS"`
	// Cancellation overrides the POSIX cancellation mode.
	Cancellation string `yaml:"cancellation" env:"HIOLOAD_THREAD_CANCELLATION"`
	// EventLogSize bounds the lifecycle history.
	EventLogSize int `yaml:"event_log_size" env:"HIOLOAD_THREAD_EVENT_LOG_SIZE"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		MaxThreads:   0,
		Cancellation: CancellationDefault,
		EventLogSize: 256,
	}
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.MaxThreads < 0 {
		return fmt.Errorf("max_threads must be >= 0, got %d", c.MaxThreads)
	}
	if c.EventLogSize < 0 {
		return fmt.Errorf("event_log_size must be >= 0, got %d", c.EventLogSize)
	}
	switch c.Cancellation {
	case CancellationDefault, CancellationCooperative, CancellationLiveness:
	default:
		return fmt.Errorf("unknown cancellation mode %q", c.Cancellation)
	}
	return nil
}

// LoadConfig reads path if it exists, then applies HIOLOAD_THREAD_*
// environment overrides. An empty path or a missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigStore holds the live configuration snapshot.
type ConfigStore struct {
	cur       atomic.Pointer[Config]
	mu        sync.Mutex
	listeners []func(*Config)
}

// NewConfigStore initializes a store with cfg, or defaults when nil.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cs := &ConfigStore{}
	cs.cur.Store(cfg)
	return cs
}

// Get returns the current snapshot. Callers must not modify it.
func (cs *ConfigStore) Get() *Config {
	return cs.cur.Load()
}

// Set replaces the snapshot and invokes reload listeners in registration
// order.
func (cs *ConfigStore) Set(cfg *Config) {
	cs.cur.Store(cfg)
	cs.mu.Lock()
	listeners := slices.Clone(cs.listeners)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func(*Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
