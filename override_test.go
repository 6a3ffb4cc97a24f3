package sinklog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyOverride tests applying configuration overrides from key-value strings
func TestApplyOverride(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.log")

	tests := []struct {
		name      string
		overrides []string
		verify    func(t *testing.T, l *Logger, cfg *Config)
		wantError string
	}{
		{
			name:      "level and rotation",
			overrides: []string{"level=error", "policy=size", "max_files=3", "max_size_kb=64"},
			verify: func(t *testing.T, l *Logger, cfg *Config) {
				assert.Equal(t, "error", cfg.Level)
				assert.Equal(t, "size", cfg.Policy)
				assert.Equal(t, int64(3), cfg.MaxFiles)
				assert.Equal(t, int64(64), cfg.MaxSizeKB)
				assert.False(t, l.Enabled(LevelInfo))
			},
		},
		{
			name:      "level files with aliasing",
			overrides: []string{"info_file=" + shared, "error_file=" + shared, "policy=daily"},
			verify: func(t *testing.T, l *Logger, cfg *Config) {
				reg := l.registry.Load()
				assert.Same(t, reg.sink(LevelInfo), reg.sink(LevelError))
				assert.Equal(t, PolicyDaily, l.Stats()[LevelInfo].Policy)
			},
		},
		{
			name:      "whitespace and booleans",
			overrides: []string{" level = info ", "internal_errors_to_stderr=true"},
			verify: func(t *testing.T, l *Logger, cfg *Config) {
				assert.Equal(t, "info", cfg.Level)
				assert.True(t, cfg.InternalErrorsToStderr)
			},
		},
		{
			name:      "unknown key",
			overrides: []string{"format=json"},
			wantError: "unknown configuration key 'format'",
		},
		{
			name:      "invalid level",
			overrides: []string{"level=trace"},
			wantError: "invalid level value 'trace'",
		},
		{
			name:      "invalid integer",
			overrides: []string{"max_files=many"},
			wantError: "invalid integer value for max_files",
		},
		{
			name:      "missing separator",
			overrides: []string{"level"},
			wantError: "expected key=value",
		},
		{
			name:      "errors are combined",
			overrides: []string{"policy=weekly", "max_size_kb=big"},
			wantError: "multiple configuration errors",
		},
		{
			name:      "cross-field validation",
			overrides: []string{"file=" + shared, "debug_file=" + shared},
			wantError: "debug_file must be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _, _ := createTestLogger(t)
			err := logger.ApplyOverride(tt.overrides...)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.Equal(t, DefaultConfig(), logger.GetConfig(), "failed override must not change the logger")
				return
			}
			require.NoError(t, err)
			tt.verify(t, logger, logger.GetConfig())
		})
	}
}

// TestApplyOverrideIncremental verifies overrides build on the current config
func TestApplyOverrideIncremental(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	require.NoError(t, logger.ApplyOverride("level=info"))
	require.NoError(t, logger.ApplyOverride("policy=daily"))

	cfg := logger.GetConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "daily", cfg.Policy)
}
