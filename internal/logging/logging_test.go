package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaviermathew/Aragog/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"loud":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

// Setup replaces the default logger, so these tests are not parallel.
func TestSetup_Stderr(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log, cleanup, err := Setup(config.Logging{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer cleanup()

	log.Info("hidden")
	slog.Warn("shown", "dataset", "orders")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "dataset=orders")
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "aragog.log")
	var buf bytes.Buffer
	log, cleanup, err := Setup(config.Logging{Level: "debug", File: path}, &buf)
	require.NoError(t, err)

	log.Debug("to file")
	require.NoError(t, cleanup())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
	assert.Empty(t, buf.String())
}
