package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, 15, settings.GenericSecretMinLength)
	assert.Equal(t, 80, settings.GenericSecretMaxLength)
	assert.Equal(t, 5, settings.DuplicateThreshold)
	assert.Equal(t, 3, settings.MaxHighlightsPerSecret)
	assert.True(t, settings.RandomnessEnabled)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		max     int
		wantMin int
		wantMax int
	}{
		{name: "below floor", min: 2, max: 80, wantMin: 8, wantMax: 80},
		{name: "above ceiling", min: 15, max: 500, wantMin: 15, wantMax: 128},
		{name: "both out of range", min: 0, max: 9999, wantMin: 8, wantMax: 128},
		{name: "in range untouched", min: 12, max: 64, wantMin: 12, wantMax: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			settings.GenericSecretMinLength = tt.min
			settings.GenericSecretMaxLength = tt.max

			settings.Clamp()

			assert.Equal(t, tt.wantMin, settings.GenericSecretMinLength)
			assert.Equal(t, tt.wantMax, settings.GenericSecretMaxLength)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(s *Settings) {}, wantErr: false},
		{name: "zero threshold", mutate: func(s *Settings) { s.DuplicateThreshold = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(s *Settings) { s.DuplicateThreshold = -3 }, wantErr: true},
		{name: "zero highlights", mutate: func(s *Settings) { s.MaxHighlightsPerSecret = 0 }, wantErr: true},
		{name: "inverted length bounds", mutate: func(s *Settings) {
			s.GenericSecretMinLength = 80
			s.GenericSecretMaxLength = 15
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)

			err := settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultSettings(), cfg.Settings)
	assert.NotEmpty(t, cfg.Patterns)
}

func TestLoadAppliesDefaultsAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `settings:
  generic_secret_min_length: 2
  duplicate_threshold: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Settings.GenericSecretMinLength, "out-of-range minimum is clamped")
	assert.Equal(t, 80, cfg.Settings.GenericSecretMaxLength, "unset values keep their defaults")
	assert.Equal(t, 3, cfg.Settings.DuplicateThreshold)
	assert.NotEmpty(t, cfg.Patterns, "missing pattern list falls back to the built-in set")
}

func TestLoadCustomPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `patterns:
  - name: Test Token
    body: tok_[a-z]{10}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Patterns, 1)
	assert.Equal(t, "Test Token", cfg.Patterns[0].Name)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("settings: ["), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  duplicate_threshold: 3\n"), 0o600))

	reloaded := make(chan *Config, 4)
	watcher, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, os.WriteFile(path, []byte("settings:\n  duplicate_threshold: 4\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 4, cfg.Settings.DuplicateThreshold)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload callback within 3s of the config change")
	}
}
