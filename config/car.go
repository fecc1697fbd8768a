package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/lift/core/elevator"
)

// Storage backends for the dispatch queues.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRemote = "remote"
)

// CarConfig configures the dispatch core.
type CarConfig struct {
	StartFloor int    `json:"start_floor"`
	Storage    string `json:"storage"`
	Strategy   string `json:"strategy"`
	// IdleTime is the "HH:MM" handed to the idle policy after each batch.
	// Empty skips the policy unless a request supplies a time.
	IdleTime string `json:"idle_time"`
}

// SetDefaults selects in-memory queues and strict ordering.
func (c *CarConfig) SetDefaults() {
	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	if c.Strategy == "" {
		c.Strategy = string(elevator.StrategyFIFO)
	}
}

// Validate checks storage, strategy and idle time.
func (c CarConfig) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite, StorageRemote:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if _, err := elevator.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.IdleTime != "" {
		if _, err := elevator.ParseClock(c.IdleTime); err != nil {
			return err
		}
	}
	return nil
}

// StoreConfig configures the record store served over HTTP.
type StoreConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	Addr    string `json:"addr"`
}

// SetDefaults applies the listen address and database path.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = StorageMemory
	}
	if c.Path == "" {
		c.Path = "lift.db"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
}

// Validate checks the backend.
func (c StoreConfig) Validate() error {
	if c.Backend != StorageMemory && c.Backend != StorageSQLite {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == StorageSQLite && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// RemoteConfig configures the HTTP client of a remote record store.
type RemoteConfig struct {
	BaseURL   string `json:"base_url"`
	TimeoutMS int    `json:"timeout_ms"`
	// MaxRetries left unset selects the default; zero disables retries.
	MaxRetries *int `json:"max_retries"`
	BackoffMS  int  `json:"backoff_ms"`
}

// DefaultRemoteRetries is used when max_retries is not configured.
const DefaultRemoteRetries = 3

// SetDefaults applies timeouts and retry settings.
func (c *RemoteConfig) SetDefaults() {
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
	if c.MaxRetries == nil {
		n := DefaultRemoteRetries
		c.MaxRetries = &n
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the retry count.
func (c RemoteConfig) Validate() error {
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// Retries returns the configured retry count, the default when unset.
func (c RemoteConfig) Retries() int {
	if c.MaxRetries == nil {
		return DefaultRemoteRetries
	}
	return *c.MaxRetries
}

// Timeout returns the per-request timeout.
func (c RemoteConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMS) * time.Millisecond }

// Backoff returns the initial retry delay.
func (c RemoteConfig) Backoff() time.Duration { return time.Duration(c.BackoffMS) * time.Millisecond }
