package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SanjoDeundiak/devpanel/internal/config"
)

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "warn", Console: true}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("visible", zap.String("source", "git"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "git")
}

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "devpanel.log")
	logger, err := New(config.LogConfig{Level: "info", File: path, MaxSize: 1}, nil)
	require.NoError(t, err)

	logger.Info("panel started", zap.Uint64("epoch", 1))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "panel started", entry["msg"])
	assert.Equal(t, float64(1), entry["epoch"])
}

func TestNoOutputsIsNop(t *testing.T) {
	logger, err := New(WithoutConsole(config.LogConfig{Level: "debug", Console: true}), os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, zap.NewNop().Core().Enabled(zap.DebugLevel), logger.Core().Enabled(zap.DebugLevel))
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}
