package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestConfigureJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	require.NoError(t, Configure("warn", "json"))
	defer func() {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		_ = Configure("", "")
	}()

	l := New("builder")
	l.Infof("dropped")
	l.Warnf("kept %d", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "builder", line["component"])
	assert.Equal(t, "kept 1", line["message"])
	assert.Equal(t, "warn", line["level"])
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	assert.Error(t, Configure("loud", ""))
	assert.Error(t, Configure("", "xml"))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("x")
	l.Debugw("x", nil)
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}
