package config

import (
	"errors"
	"fmt"
	"strings"
)

// Settings is the runtime configuration of the monitor engine. It is
// replaced as a whole on every update, never field by field.
type Settings struct {
	MaxLatencyMS   int    `yaml:"max_latency_ms" json:"max_latency_ms"`
	CheckIntervalS int    `yaml:"check_interval_s" json:"check_interval_s"`
	PingHost       string `yaml:"ping_host" json:"ping_host"`
	Enabled        bool   `yaml:"enabled" json:"enabled"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		MaxLatencyMS:   100,
		CheckIntervalS: 10,
		PingHost:       "8.8.8.8",
		Enabled:        false,
	}
}

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Validate reports whether the settings can be applied. Settings that
// fail validation must never replace an active configuration.
func (s Settings) Validate() error {
	if s.MaxLatencyMS <= 0 {
		return fmt.Errorf("%w: max_latency_ms must be positive, got %d", ErrInvalidSettings, s.MaxLatencyMS)
	}
	if s.CheckIntervalS <= 0 {
		return fmt.Errorf("%w: check_interval_s must be positive, got %d", ErrInvalidSettings, s.CheckIntervalS)
	}
	if strings.TrimSpace(s.PingHost) == "" {
		return fmt.Errorf("%w: ping_host must not be empty", ErrInvalidSettings)
	}
	return nil
}
