package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `solver:
  engine:
    type: gonum
    conf:
      node_limit: 5000
  time_limit_seconds: 30
  verbose: true
formulation:
  enable_time_window_penalties: false
  enable_wait_time: false
  big_m: 5000
logging:
  level: debug
  format: console
metrics:
  sinks:
    - type: nop
    - type: prometheus
      conf:
        job: nightly
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic: "fleet/plans"
  qos: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gonum", cfg.Solver.Engine.Type)
	assert.EqualValues(t, 5000, cfg.Solver.Engine.Conf["node_limit"])
	assert.Equal(t, 30*time.Second, cfg.Solver.TimeLimit())
	assert.True(t, cfg.Solver.Verbose)
	assert.Equal(t, "basic", cfg.Formulation.Variant())
	assert.Equal(t, 5000.0, cfg.Formulation.BigM)
	assert.Equal(t, 10000.0, cfg.Formulation.Horizon)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	require.Len(t, cfg.Metrics.Sinks, 2)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[1].Type)
	assert.Equal(t, "nightly", cfg.Metrics.Sinks[1].Conf["job"])
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "fleet/plans", cfg.MQTT.Topic)
	assert.EqualValues(t, 1, cfg.MQTT.QoS)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
}

func TestLoadJSONKeepsDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"logging": {"level": "warn"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Formulation.Variant())
	assert.Equal(t, "gonum", cfg.Solver.Engine.Type)
	assert.Equal(t, 10*time.Minute, cfg.Solver.TimeLimit())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "solver:\n  time_limit_seconds: 30\n")
	t.Setenv("VRPTW_SOLVER__TIME_LIMIT_SECONDS", "45")
	t.Setenv("VRPTW_FORMULATION__ENABLE_WAIT_TIME", "false")
	t.Setenv("VRPTW_LOGGING__LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Solver.TimeLimit())
	assert.Equal(t, "penalties", cfg.Formulation.Variant())
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "x = 1"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"negative limit": "solver:\n  time_limit_seconds: -1\n",
		"bad level":      "logging:\n  level: loud\n",
		"bad format":     "logging:\n  format: xml\n",
		"bad rotation":   "logging:\n  file: vrptw.log\n  max_backups: -1\n",
		"bad big m":      "formulation:\n  big_m: -3\n",
		"untyped sink":   "metrics:\n  sinks:\n    - conf: {}\n",
		"mqtt no broker": "mqtt:\n  enabled: true\n",
		"mqtt bad qos":   "mqtt:\n  enabled: true\n  broker: tcp://b:1883\n  qos: 3\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
		})
	}
}

func TestLoggingFileDefaults(t *testing.T) {
	c := LoggingConfig{File: "logs/vrptw.log"}
	c.SetDefaults()
	assert.Equal(t, 100, c.MaxSizeMB)
	assert.NoError(t, c.Validate())
}

func TestDisabledMQTTIsNotValidated(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.MQTT.ClientID)
}
