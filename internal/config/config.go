// Package config provides YAML-driven configuration for the reasoning
// substrate's tunable knobs: retention defaults, epoch projector
// safety toggles, VAD thresholds, and the persistence adapter to use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all substrate configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Epoch    EpochConfig    `yaml:"epoch"`
	VAD      VADConfig      `yaml:"vad"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SnapshotConfig configures branch snapshot retention defaults.
type SnapshotConfig struct {
	// DefaultMaxAge is the age window used by ByAge/Combined retention
	// when a collaborator does not specify one explicitly.
	DefaultMaxAge time.Duration `yaml:"default_max_age"`
	// DefaultKeepCount is the default ByCount/Combined retention count.
	DefaultKeepCount int `yaml:"default_keep_count"`
}

// EpochConfig configures the epoch projector.
type EpochConfig struct {
	// AllowClear gates the test-utility Clear() operation. Production
	// wiring should leave this false.
	AllowClear bool `yaml:"allow_clear"`
}

// VADConfig configures the adaptive speech-activity detector.
type VADConfig struct {
	SampleRateHz         int     `yaml:"sample_rate_hz"`
	OnsetFrames          int     `yaml:"onset_frames"`
	OffsetFrames         int     `yaml:"offset_frames"`
	EnergyHistorySize    int     `yaml:"energy_history_size"`
	AdaptationRate       float64 `yaml:"adaptation_rate"`
	SpeechToNoiseRatio   float64 `yaml:"speech_to_noise_ratio"`
	MinThreshold         float64 `yaml:"min_threshold"`
	MaxThreshold         float64 `yaml:"max_threshold"`
	SelfVoiceCooldownMs  int64   `yaml:"self_voice_cooldown_ms"`
	ZCREnabled           bool    `yaml:"zcr_enabled"`
	ZCRBandMin           float64 `yaml:"zcr_band_min"`
	ZCRBandMax           float64 `yaml:"zcr_band_max"`
	FingerprintEnabled   bool    `yaml:"fingerprint_enabled"`
	FingerprintSampleCap int     `yaml:"fingerprint_sample_cap"`
	RecentSegmentsCap    int     `yaml:"recent_segments_cap"`
}

// StoreConfig selects and configures the persistence adapter.
type StoreConfig struct {
	// Driver is "memory" (default) or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file path, used only when Driver is
	// "sqlite".
	Path string `yaml:"path"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Development bool `yaml:"development"`
}

// DefaultConfig returns the configuration matching spec.md's stated
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			DefaultMaxAge:    7 * 24 * time.Hour,
			DefaultKeepCount: 10,
		},
		Epoch: EpochConfig{
			AllowClear: false,
		},
		VAD: VADConfig{
			SampleRateHz:         16000,
			OnsetFrames:          2,
			OffsetFrames:         8,
			EnergyHistorySize:    100,
			AdaptationRate:       0.02,
			SpeechToNoiseRatio:   2.5,
			MinThreshold:         0.015,
			MaxThreshold:         0.15,
			SelfVoiceCooldownMs:  0,
			ZCREnabled:           true,
			ZCRBandMin:           0.02,
			ZCRBandMax:           0.5,
			FingerprintEnabled:   false,
			FingerprintSampleCap: 12,
			RecentSegmentsCap:    50,
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Development: false,
		},
	}
}

// Load reads YAML configuration from path, falling back to defaults if
// the file does not exist, and finally applying environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects configurations that would violate VAD band
// invariants (min <= max) or non-positive sample rates.
func (c *Config) Validate() error {
	if c.VAD.MinThreshold > c.VAD.MaxThreshold {
		return fmt.Errorf("vad: min_threshold %.4f exceeds max_threshold %.4f", c.VAD.MinThreshold, c.VAD.MaxThreshold)
	}
	if c.VAD.SampleRateHz <= 0 {
		return fmt.Errorf("vad: sample_rate_hz must be positive, got %d", c.VAD.SampleRateHz)
	}
	if c.Snapshot.DefaultKeepCount < 0 {
		return fmt.Errorf("snapshot: default_keep_count must be non-negative, got %d", c.Snapshot.DefaultKeepCount)
	}
	if c.Store.Driver != "memory" && c.Store.Driver != "sqlite" {
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store: path is required for the sqlite driver")
	}
	return nil
}
