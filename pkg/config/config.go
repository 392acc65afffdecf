// Package config holds the read-only settings snapshot and pattern set the
// engine scans with, plus the file loading and change notification around it.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/CompassSecurity/responseleak/pkg/scanner/rules"
	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Hard bounds for the generic secret length settings. Values outside are
// clamped on load, matching the documented behavior of the settings layer.
const (
	MinGenericSecretLength = 8
	MaxGenericSecretLength = 128
)

// Settings are the engine tunables. A Settings value is treated as an
// immutable snapshot per scan.
type Settings struct {
	// GenericSecretMinLength / GenericSecretMaxLength bound the candidate
	// length of the generic pattern family, clamped to [8, 128].
	GenericSecretMinLength int `yaml:"generic_secret_min_length"`
	GenericSecretMaxLength int `yaml:"generic_secret_max_length"`
	// DuplicateThreshold is how often the same value may be reported per
	// origin before being suppressed.
	DuplicateThreshold int `yaml:"duplicate_threshold"`
	// MaxHighlightsPerSecret bounds the occurrence spans per unique value.
	MaxHighlightsPerSecret int `yaml:"max_highlights_per_secret"`
	// RandomnessEnabled toggles the generic family as a whole.
	RandomnessEnabled bool `yaml:"randomness_algorithm_enabled"`
}

// DefaultSettings mirrors the shipped defaults.
func DefaultSettings() Settings {
	return Settings{
		GenericSecretMinLength: 15,
		GenericSecretMaxLength: 80,
		DuplicateThreshold:     5,
		MaxHighlightsPerSecret: 3,
		RandomnessEnabled:      true,
	}
}

// Clamp forces the length bounds into [8, 128].
func (s *Settings) Clamp() {
	if s.GenericSecretMinLength < MinGenericSecretLength {
		s.GenericSecretMinLength = MinGenericSecretLength
	}
	if s.GenericSecretMaxLength > MaxGenericSecretLength {
		s.GenericSecretMaxLength = MaxGenericSecretLength
	}
}

// Validate rejects settings no scanner can honor. This runs before any scan
// starts; nothing here is silently corrected.
func (s Settings) Validate() error {
	if s.DuplicateThreshold < 1 {
		return errors.New("duplicate_threshold must be >= 1, got " + strconv.Itoa(s.DuplicateThreshold))
	}
	if s.MaxHighlightsPerSecret < 1 {
		return errors.New("max_highlights_per_secret must be >= 1, got " + strconv.Itoa(s.MaxHighlightsPerSecret))
	}
	if s.GenericSecretMinLength > s.GenericSecretMaxLength {
		return errors.New("generic_secret_min_length exceeds generic_secret_max_length")
	}
	return nil
}

// Config is one settings snapshot plus the active pattern set.
type Config struct {
	Settings Settings            `yaml:"settings"`
	Patterns []types.PatternSpec `yaml:"patterns"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Settings: DefaultSettings(),
		Patterns: rules.DefaultSpecs(),
	}
}

// Load reads a YAML config file. Missing settings keep their defaults, an
// empty pattern list falls back to the built-in set, and length bounds are
// clamped.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Settings: DefaultSettings()}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}

	cfg.Settings.Clamp()
	if len(cfg.Patterns) == 0 {
		log.Debug().Str("path", path).Msg("Config file defines no patterns, using built-in set")
		cfg.Patterns = rules.DefaultSpecs()
	}

	return cfg, nil
}
