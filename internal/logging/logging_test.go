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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithProjectID(WithComponent(NewLoggerTo(&buf, "info"), "editor"), "p1")
	logger.Debug("hidden")
	logger.Info("applied", "type", "SET_FPS")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "applied", entry["msg"])
	assert.Equal(t, "editor", entry["component"])
	assert.Equal(t, "p1", entry["project_id"])
	assert.Equal(t, "SET_FPS", entry["type"])
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "****", SanitizeToken("short"))
	assert.Equal(t, "abcd...wxyz", SanitizeToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, "~"+string(filepath.Separator)+"clips", SanitizePath(filepath.Join(home, "clips")))
	assert.Equal(t, "/elsewhere/x", SanitizePath("/elsewhere/x"))
}
