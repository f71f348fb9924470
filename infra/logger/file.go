package logger

import (
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file.
type FileConfig struct {
	Path string
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// OpenFile returns a rotating writer for cfg, creating its directory. Pass
// it to SetOutput and close it on shutdown.
func OpenFile(cfg FileConfig) (*lumberjack.Logger, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}, nil
}
