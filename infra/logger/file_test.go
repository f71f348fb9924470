package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vrptw.log")
	w, err := OpenFile(FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2})
	require.NoError(t, err)

	SetOutput(w)
	defer SetOutput(os.Stdout)
	New("file").Errorf("written to %s", "disk")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written to disk"`)
	assert.Contains(t, string(data), `"component":"file"`)
}
