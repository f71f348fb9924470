package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/vrptw/core/factory"
	"github.com/kilianp07/vrptw/core/formulation"
	"github.com/kilianp07/vrptw/core/metrics"
	"github.com/kilianp07/vrptw/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. VRPTW_SOLVER__TIME_LIMIT_SECONDS
// overrides solver.time_limit_seconds.
const EnvPrefix = "VRPTW_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the service configuration.
type Config struct {
	Solver      SolverConfig        `json:"solver"`
	Formulation formulation.Options `json:"formulation"`
	Logging     LoggingConfig       `json:"logging"`
	Metrics     metrics.Config      `json:"metrics"`
	MQTT        MQTTConfig          `json:"mqtt"`
}

// SolverConfig selects the MILP engine and the solve limits.
type SolverConfig struct {
	Engine           factory.ModuleConfig `json:"engine"`
	TimeLimitSeconds float64              `json:"time_limit_seconds"`
	Verbose          bool                 `json:"verbose"`
}

// TimeLimit converts TimeLimitSeconds.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

// SetDefaults picks the gonum engine and a ten minute limit.
func (c *SolverConfig) SetDefaults() {
	if c.Engine.Type == "" {
		c.Engine.Type = "gonum"
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 600
	}
}

// Validate checks the solver section.
func (c SolverConfig) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("solver: time_limit_seconds must not be negative, got %v", c.TimeLimitSeconds)
	}
	return nil
}

// MQTTConfig enables result publication.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// Default returns the configuration used when no file is given: the full
// formulation solved by the gonum engine, without sinks or publication.
func Default() Config {
	cfg := Config{Formulation: formulation.DefaultOptions()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Formulation.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Formulation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("%w: metrics sink %d has no type", ErrInvalidConfig, i)
		}
	}
	if c.MQTT.Enabled {
		if err := c.MQTT.Config.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path loads the defaults and the
// environment only. Keys absent from the file keep their default value.
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
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
