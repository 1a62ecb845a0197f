package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbadm.log")
	logger, err := New(path, "debug")
	require.NoError(t, err)

	logger.Debug("loaded page", zap.Int("page", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"loaded page"`)
	assert.Contains(t, string(data), `"page":2`)
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbadm.log")
	logger, err := New(path, "warn")
	require.NoError(t, err)
	logger.Info("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("", "loud")
	assert.ErrorContains(t, err, "log level")
}
