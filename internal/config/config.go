// Package config handles export tool configuration loading and management.
package config

// Config holds all export tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the target settings of an export run.
type ExportConfig struct {
	// Version is the OBJ spec version to target: 1100, 1130, 1200 or 1210.
	Version int `yaml:"version"`

	// Type is the export purpose: aircraft, cockpit, scenery or
	// instanced_scenery.
	Type string `yaml:"type"`

	// Strict aborts on the first validation error instead of dropping
	// the offending directives.
	Strict bool `yaml:"strict"`
}

// PathsConfig holds input and output file paths.
type PathsConfig struct {
	// TexturePrefix is prepended to relative texture paths in scene files.
	TexturePrefix string `yaml:"texture_prefix"`

	// OutputDir is where exported .obj files land when the output path
	// on the command line is relative.
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Version: 1210,
			Type:    "aircraft",
			Strict:  false,
		},
		Paths: PathsConfig{
			TexturePrefix: "",
			OutputDir:     ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
