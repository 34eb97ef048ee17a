package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" INFO ", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.WarnLevel},
		{"loud", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseLevel(tt.in, zapcore.WarnLevel), "level %q", tt.in)
	}
}

func TestJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Console: &buf})
	logger.Debug("hidden")
	logger.Info("opened", zap.String("path", "a.ics"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "opened", entry["msg"])
	require.Equal(t, "a.ics", entry["path"])
	require.Equal(t, "info", entry["level"])
}

func TestDevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Development: true, Console: &buf})
	logger.Debug("details", zap.Int("dims", 3))
	require.NoError(t, logger.Sync())

	out := buf.String()
	require.Contains(t, out, "DEBUG")
	require.Contains(t, out, "details")
	require.Contains(t, out, `{"dims": 3}`)
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icstool.log")
	var console bytes.Buffer
	logger := New(Options{Level: "warn", File: path, Console: &console})
	logger.Info("skipped")
	logger.Warn("kept", zap.String("file", "x.ics"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "skipped")
	require.Contains(t, string(raw), `"msg":"kept"`)
	require.Contains(t, console.String(), "kept")
}
