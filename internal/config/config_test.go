package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Version != 1210 {
		t.Errorf("expected version 1210, got %d", cfg.Export.Version)
	}
	if cfg.Export.Type != "aircraft" {
		t.Errorf("expected type 'aircraft', got %s", cfg.Export.Type)
	}
	if cfg.Export.Strict {
		t.Error("expected strict to be false by default")
	}

	if cfg.Paths.OutputDir != "." {
		t.Errorf("expected output dir '.', got %s", cfg.Paths.OutputDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  version: 1200
  type: instanced_scenery
  strict: true

paths:
  texture_prefix: "textures/"
  output_dir: "build/objects"

logging:
  level: debug
  log_file: export.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Version != 1200 {
		t.Errorf("expected version 1200, got %d", cfg.Export.Version)
	}
	if cfg.Export.Type != "instanced_scenery" {
		t.Errorf("expected type 'instanced_scenery', got %s", cfg.Export.Type)
	}
	if !cfg.Export.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Paths.TexturePrefix != "textures/" {
		t.Errorf("expected texture prefix 'textures/', got %s", cfg.Paths.TexturePrefix)
	}
	if cfg.Paths.OutputDir != "build/objects" {
		t.Errorf("expected output dir 'build/objects', got %s", cfg.Paths.OutputDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "export.log" {
		t.Errorf("expected log file 'export.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadPartialFile(t *testing.T) {
	// A file that only sets some keys keeps defaults for the rest.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  version: 1130
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Version != 1130 {
		t.Errorf("expected version 1130, got %d", cfg.Export.Version)
	}
	if cfg.Export.Type != "aircraft" {
		t.Errorf("expected default type 'aircraft', got %s", cfg.Export.Type)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestExportConfig(t *testing.T) {
	cfg := Default()
	cfg.Export.Version = 1200
	cfg.Export.Type = "cockpit"
	cfg.Export.Strict = true

	ec, err := cfg.ExportConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ec.Version != obj8.Version1200 {
		t.Errorf("expected Version1200, got %v", ec.Version)
	}
	if ec.Type != obj8.ExportCockpit {
		t.Errorf("expected ExportCockpit, got %v", ec.Type)
	}
	if !ec.Strict {
		t.Error("expected strict to carry through")
	}
}

func TestExportConfigInvalid(t *testing.T) {
	cfg := Default()
	cfg.Export.Version = 1000
	if _, err := cfg.ExportConfig(); err == nil {
		t.Error("expected error for unsupported version")
	}

	cfg = Default()
	cfg.Export.Type = "spaceship"
	if _, err := cfg.ExportConfig(); err == nil {
		t.Error("expected error for unknown export type")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := Default()
	cfg.Export.Version = 1130
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Export.Version != 1130 {
		t.Errorf("round trip lost version: got %d", loaded.Export.Version)
	}
}
