// Package config loads the MemeSender configuration: the shared bot core
// sections plus database, storage, session and sender settings.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/pixol20/MemeSender/core/config"
	coredatabase "github.com/pixol20/MemeSender/core/database"
	"github.com/pixol20/MemeSender/core/telegram/sender"
	"github.com/pixol20/MemeSender/core/telegram/state"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StorageConfig selects the item store. The memory driver keeps everything
// in process and skips the database entirely.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// SessionsConfig bounds the per-user session registry.
type SessionsConfig struct {
	IdleTTL  time.Duration `yaml:"idle_ttl" envconfig:"SESSIONS_IDLE_TTL"`
	Capacity int           `yaml:"capacity" envconfig:"SESSIONS_CAPACITY"`
}

// SenderConfig tunes the outbound Telegram dispatcher.
type SenderConfig struct {
	QueueSize    int           `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers      int           `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"SENDER_RETRY_BACKOFF"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Sender   SenderConfig        `yaml:"sender"`
}

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 500 * time.Millisecond
	defaultDBPort       = "5432"
)

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// DispatcherOptions converts the sender section.
func (c *Config) DispatcherOptions() sender.Options {
	return sender.Options{
		QueueSize:    c.Sender.QueueSize,
		Workers:      c.Sender.Workers,
		MaxRetries:   c.Sender.MaxRetries,
		RetryBackoff: c.Sender.RetryBackoff,
	}
}

// SessionOptions converts the sessions section.
func (c *Config) SessionOptions() state.Options {
	return state.Options{Capacity: c.Sessions.Capacity, IdleTTL: c.Sessions.IdleTTL}
}

// Load reads path, overlays environment variables and normalizes the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres:
		db := &cfg.Database
		if db.Host == "" || db.User == "" || db.Name == "" {
			return fmt.Errorf("database.host, database.user and database.name are required for the postgres driver")
		}
		if db.Port == "" {
			db.Port = defaultDBPort
		}
		if db.MaxConnections < 0 {
			return fmt.Errorf("database.max_connections must be >= 0")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: postgres, memory", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver

	if cfg.Sessions.IdleTTL < 0 || cfg.Sessions.Capacity < 0 {
		return fmt.Errorf("sessions.idle_ttl and sessions.capacity must be >= 0")
	}
	if cfg.Sessions.IdleTTL == 0 {
		cfg.Sessions.IdleTTL = state.DefaultIdleTTL
	}
	if cfg.Sessions.Capacity == 0 {
		cfg.Sessions.Capacity = state.DefaultCapacity
	}

	s := &cfg.Sender
	if s.QueueSize < 0 || s.Workers < 0 || s.MaxRetries < 0 || s.RetryBackoff < 0 {
		return fmt.Errorf("sender settings must be >= 0")
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = defaultMaxRetries
	}
	if s.RetryBackoff == 0 {
		s.RetryBackoff = defaultRetryBackoff
	}
	return nil
}
