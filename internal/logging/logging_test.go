package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearnote.log")

	logger, err := New("debug", path)
	require.NoError(t, err)
	logger.Debug("cache rebuilt")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache rebuilt")
	assert.Contains(t, string(data), `"logger":"hearnote"`)
}
