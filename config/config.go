package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/infra/mqtt"
)

// EnvPrefix marks environment overrides. LIFT_CAR__START_FLOOR=3 sets
// car.start_floor.
const EnvPrefix = "LIFT_"

type Config struct {
	Car     CarConfig      `json:"car"`
	Store   StoreConfig    `json:"store"`
	Remote  RemoteConfig   `json:"remote"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Metrics metrics.Config `json:"metrics"`
	Journal JournalConfig  `json:"journal"`
	Sentry  SentryConfig   `json:"sentry"`
	Logging LoggingConfig  `json:"logging"`
}

// Load reads the file at path, applies environment overrides and validates
// the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Car.SetDefaults()
	c.Store.SetDefaults()
	c.Remote.SetDefaults()
	c.MQTT.SetDefaults()
	c.Journal.SetDefaults()
	c.Sentry.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	checks := []struct {
		section string
		fn      func() error
	}{
		{"car", c.Car.Validate},
		{"store", c.Store.Validate},
		{"remote", c.Remote.Validate},
		{"journal", c.Journal.Validate},
		{"sentry", c.Sentry.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.section, err)
		}
	}
	if c.Car.Storage == StorageRemote && c.Remote.BaseURL == "" {
		return fmt.Errorf("remote: base_url is required when car.storage is %q", StorageRemote)
	}
	return nil
}
