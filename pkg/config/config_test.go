package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psrun/pkg/test"
)

func withMemFs(t *testing.T) afero.Fs {
	orig := AppFs
	fs := test.SetupMockFilesystem(t)
	AppFs = fs
	t.Cleanup(func() { AppFs = orig })
	return fs
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	withMemFs(t)

	cfg, err := Load("/etc/psrun.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Interpreter)
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
}

func TestLoad_ParsesFile(t *testing.T) {
	fs := withMemFs(t)
	content := `
interpreter: pwsh
timeout: 30s
temp_dir: /var/tmp/psrun
log_level: debug
`
	test.CreateTestFile(t, fs, "/etc/psrun.yaml", content)

	cfg, err := Load("/etc/psrun.yaml")
	require.NoError(t, err)
	assert.Equal(t, "pwsh", cfg.Interpreter)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "/var/tmp/psrun", cfg.TempDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	fs := withMemFs(t)
	test.CreateTestFile(t, fs, "/etc/psrun.yaml", "interpreter: [unclosed")

	_, err := Load("/etc/psrun.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	fs := withMemFs(t)
	test.CreateTestFile(t, fs, "/etc/psrun.yaml", "log_level: loud")

	_, err := Load("/etc/psrun.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	fs := withMemFs(t)
	test.CreateTestFile(t, fs, "/etc/psrun.yaml", "timeout: soon")

	_, err := Load("/etc/psrun.yaml")
	assert.Error(t, err)
}

func TestTimeout_FallsBackToDefault(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultTimeout, cfg.Timeout())

	cfg.RawTimeout = "150ms"
	assert.Equal(t, 150*time.Millisecond, cfg.Timeout())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
