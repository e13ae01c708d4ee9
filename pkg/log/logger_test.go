package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelInfo, &buf)

	assert.NotNil(t, logger)
	assert.NotNil(t, logger.logger)
}

func TestSlogLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelDebug, &buf)

	logger.Debug("test debug", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test debug")
	assert.Contains(t, output, "key=value")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelWarn, &buf)

	logger.Info("should not appear")
	logger.Warn("should appear", "stream", "stderr")

	output := buf.String()
	assert.NotContains(t, output, "should not appear")
	assert.Contains(t, output, "should appear")
	assert.Contains(t, output, "stream=stderr")
}

func TestSlogLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelError, &buf)

	logger.Error("test error", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test error")
	assert.Contains(t, output, "key=value")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}

	// Must not panic; output is discarded.
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
}
