package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"wifiwatch/internal/config"
)

// SettingsStore persists monitor settings to a YAML file on disk. The
// engine itself never touches disk; only the entrypoint and the control
// surface go through the store.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates a store and ensures its directory exists.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure settings directory: %w", err)
		}
	}
	return &SettingsStore{path: path}, nil
}

// Load reads settings from disk. A missing file falls back to defaults;
// a present but invalid file is an error rather than a silent reset.
func (s *SettingsStore) Load() (config.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return config.Default(), nil
	}
	if err != nil {
		return config.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := config.Default()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return config.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("stored settings: %w", err)
	}
	return settings, nil
}

// Save writes settings to disk, replacing the file atomically so a
// crash mid-write never leaves a truncated settings file behind.
func (s *SettingsStore) Save(settings config.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
