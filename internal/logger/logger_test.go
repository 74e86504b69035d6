package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/iconvault/iconvault/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, logger.ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("icon added", "id", "icon-abc")

	out := buf.String()
	require.Contains(t, out, `"msg":"icon added"`)
	require.Contains(t, out, `"id":"icon-abc"`)
}

func TestNew_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Writer:      &buf,
		Environment: "development",
	})

	log.Warn("document reset", "file", "icons.json")

	out := buf.String()
	require.Contains(t, out, "document reset")
	require.Contains(t, out, "file=icons.json")
	require.True(t, strings.Contains(out, "WRN"))
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelWarn,
	})

	log.Info("should be dropped")
	log.Warn("should appear")

	out := buf.String()
	require.NotContains(t, out, "should be dropped")
	require.Contains(t, out, "should appear")
}
