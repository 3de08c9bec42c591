// Package config loads the weft.yaml file driving the CLI.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit path is given.
const DefaultPath = "weft.yaml"

// Storage drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the root of weft.yaml.
type Config struct {
	Log       LogConfig      `yaml:"log"`
	Engine    EngineConfig   `yaml:"engine"`
	Snapshots SnapshotConfig `yaml:"snapshots"`
	Memory    MemoryConfig   `yaml:"memory"`
	Redis     RedisConfig    `yaml:"redis"`
	Lock      LockConfig     `yaml:"lock"`
	HTTP      HTTPConfig     `yaml:"http"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type EngineConfig struct {
	MaxSteps int               `yaml:"max_steps"`
	Env      map[string]string `yaml:"env"`
	// Functions points to a process functions file.
	Functions string `yaml:"functions"`
}

// SnapshotConfig selects where run snapshots are persisted.
type SnapshotConfig struct {
	Driver string        `yaml:"driver"`
	Path   string        `yaml:"path"`
	DSN    string        `yaml:"dsn"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
	// MaskKeys are regular expressions of store keys masked before saving.
	MaskKeys []string `yaml:"mask_keys"`
	// EncryptionKey is a base64 AES-256 key sealing snapshots at rest.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
}

type MemoryConfig struct {
	Driver string `yaml:"driver"`
	Prefix string `yaml:"prefix"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LockConfig serializes runs sharing an id through Redis.
type LockConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		Engine:    EngineConfig{MaxSteps: 1000},
		Snapshots: SnapshotConfig{Driver: DriverMemory, Path: ".weft/runs"},
		Memory:    MemoryConfig{Driver: DriverMemory},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		Lock:      LockConfig{TTL: 5 * time.Minute},
		HTTP:      HTTPConfig{Addr: ":8080", Metrics: true},
	}
}

// Load reads path over the defaults. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist. ${VAR} references
// are expanded from the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks driver names and keys.
func (c *Config) Validate() error {
	switch c.Snapshots.Driver {
	case DriverNone, DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown snapshots driver %q", c.Snapshots.Driver)
	}
	if c.Snapshots.Driver == DriverSQLite && c.Snapshots.DSN == "" {
		return errors.New("snapshots.dsn is required for sqlite")
	}

	for _, p := range c.Snapshots.MaskKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("snapshots.mask_keys: %w", err)
		}
	}

	switch c.Memory.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown memory driver %q", c.Memory.Driver)
	}

	if c.Engine.MaxSteps < 0 {
		return errors.New("engine.max_steps must not be negative")
	}

	if c.Snapshots.EncryptionKey != "" {
		if _, _, err := c.Snapshots.Keys(); err != nil {
			return err
		}
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.Snapshots.Driver == DriverRedis || c.Memory.Driver == DriverRedis || c.Lock.Enabled
}

// Keys decodes the active and fallback encryption keys.
func (s SnapshotConfig) Keys() ([]byte, [][]byte, error) {
	active, err := decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshots.encryption_key: %w", err)
	}
	fallback := make([][]byte, 0, len(s.FallbackKeys))
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshots.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
