package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	return cfg, nil
}

// ExportConfig converts the loaded settings into an engine configuration.
func (c *Config) ExportConfig() (obj8.Config, error) {
	v := obj8.Version(c.Export.Version)
	if !v.Valid() {
		return obj8.Config{}, fmt.Errorf("unsupported target version %d (use 1100, 1130, 1200 or 1210)",
			c.Export.Version)
	}
	t, err := obj8.ParseExportType(c.Export.Type)
	if err != nil {
		return obj8.Config{}, err
	}
	return obj8.Config{Version: v, Type: t, Strict: c.Export.Strict}, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./obj8export.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "XPlaneObj8")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "XPlaneObj8")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "xplane-obj8")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "xplane-obj8")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
