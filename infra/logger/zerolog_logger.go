package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	format string
	out    io.Writer = os.Stdout
)

// Configure sets the global level and output format ("json" or "console")
// for loggers created afterwards. An empty level keeps the current one.
func Configure(level, outputFormat string) error {
	if level != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		zerolog.SetGlobalLevel(lvl)
	}
	switch outputFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", outputFormat)
	}
	mu.Lock()
	format = outputFormat
	mu.Unlock()
	return nil
}

// SetOutput redirects loggers created afterwards.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger. Console output is used when the
// configured format is "console" or, without configuration, when APP_ENV is
// "dev". All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	f, w := format, out
	mu.RUnlock()
	if f == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		f = "console"
	}
	if f == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
