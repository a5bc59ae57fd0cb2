package toolconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
)

// SettingsKey is the table holding devtask's own configuration
const SettingsKey = "tool.devtask"

// Settings configures devtask itself
type Settings struct {
	TaskFile   string `mapstructure:"task-file"`
	HookConfig string `mapstructure:"hook-config"`
	LogLevel   string `mapstructure:"log-level"`
	Color      string `mapstructure:"color"`
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		HookConfig: ".pre-commit-config.yaml",
		Color:      "auto",
	}
}

// Settings decodes [tool.devtask] over the defaults
func (p *Provider) Settings() (Settings, error) {
	settings := DefaultSettings()
	if err := p.decodeOptional(SettingsKey, &settings); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("%s: %w", SettingsKey, err)
	}
	return settings, nil
}

// Validate checks enumerated settings
func (s Settings) Validate() error {
	if !slices.Contains([]string{"auto", "always", "never"}, s.Color) {
		return fmt.Errorf("color must be auto, always or never, got %q", s.Color)
	}
	return nil
}

// LoadSettings reads settings from the manifest at path. A missing manifest
// is not an error: the defaults apply.
func LoadSettings(path string) (Settings, *Provider, error) {
	p, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), New(), nil
		}
		return DefaultSettings(), nil, err
	}

	settings, err := p.Settings()
	return settings, p, err
}
