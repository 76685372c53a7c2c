package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, "debug"), "grid")

	logger.Debug("drop rejected", "appointment_id", "a1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "drop rejected", entry["msg"])
	assert.Equal(t, "salonboard", entry["service"])
	assert.Equal(t, "grid", entry["component"])
	assert.Equal(t, "a1", entry["appointment_id"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("ignored")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestOpen(t *testing.T) {
	logger, closeFn, err := Open("", "info")
	require.NoError(t, err)
	logger.Info("nowhere")
	require.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "logs", "board.log")
	logger, closeFn, err = Open(path, "info")
	require.NoError(t, err)
	logger.Info("written")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
}
