// Package config loads the statekit CLI configuration from YAML or JSON.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "statekit.yaml"

// EnvEncryptionKey overrides persistence.encryption_key.
const EnvEncryptionKey = "STATEKIT_ENCRYPTION_KEY"

// Persistence backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by Validate for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown persistence backend")

// Config is the top-level configuration document.
type Config struct {
	LogLevel    string      `yaml:"log_level" json:"log_level"`
	LogJSON     bool        `yaml:"log_json" json:"log_json"`
	Persistence Persistence `yaml:"persistence" json:"persistence"`
	PersistForm PersistForm `yaml:"persist_form" json:"persist_form"`
	DirtyCheck  DirtyCheck  `yaml:"dirty_check" json:"dirty_check"`
}

// Persistence selects and configures the snapshot backend.
type Persistence struct {
	Backend       string        `yaml:"backend" json:"backend"`
	Dir           string        `yaml:"dir" json:"dir"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db"`
	Prefix        string        `yaml:"prefix" json:"prefix"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, snapshots are sealed
	// before they reach the backend.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// FallbackKeys are older base64 keys still accepted on load.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
	// Mask lists key patterns whose values are replaced before saving.
	Mask []string `yaml:"mask" json:"mask"`
}

// Keys decodes the encryption keys. Both are nil when encryption is off.
func (p Persistence) Keys() (active []byte, fallback [][]byte, err error) {
	if p.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = base64.StdEncoding.DecodeString(p.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("persistence.encryption_key is not base64: %w", err)
	}
	for i, k := range p.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, nil, fmt.Errorf("persistence.fallback_keys[%d] is not base64: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

// PersistForm holds the defaults of the persist-form plugin.
type PersistForm struct {
	DebounceMS int    `yaml:"debounce_ms" json:"debounce_ms"`
	FormKey    string `yaml:"form_key" json:"form_key"`
	EmitEvent  bool   `yaml:"emit_event" json:"emit_event"`
}

// Debounce returns DebounceMS as a duration.
func (p PersistForm) Debounce() time.Duration {
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// DirtyCheck holds the defaults of the dirty-check plugin.
type DirtyCheck struct {
	WatchProperty []string `yaml:"watch_property" json:"watch_property"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Persistence: Persistence{
			Backend:   BackendFile,
			Dir:       filepath.Join(".statekit", "snapshots"),
			RedisAddr: "localhost:6379",
			Prefix:    "statekit:snapshot:",
		},
		PersistForm: PersistForm{
			DebounceMS: 300,
			FormKey:    "akitaForm",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// STATEKIT_ENCRYPTION_KEY, when set, replaces the configured key.
// Files ending in .json are parsed as JSON, anything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	}

	if key := os.Getenv(EnvEncryptionKey); key != "" {
		cfg.Persistence.EncryptionKey = key
	}
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	switch c.Persistence.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Persistence.Backend)
	}
	if c.PersistForm.DebounceMS < 0 {
		return fmt.Errorf("persist_form.debounce_ms must not be negative, got %d", c.PersistForm.DebounceMS)
	}
	if c.Persistence.TTL < 0 {
		return fmt.Errorf("persistence.ttl must not be negative, got %s", c.Persistence.TTL)
	}
	if _, _, err := c.Persistence.Keys(); err != nil {
		return err
	}
	return nil
}
