package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagVersion = flag.Int("obj-version", 0, "Target OBJ version (1100, 1130, 1200, 1210)")
	flagType    = flag.String("type", "", "Export type (aircraft, cockpit, scenery, instanced_scenery)")
	flagStrict  = flag.Bool("strict", false, "Abort on the first validation error")
	flagOutDir  = flag.String("out-dir", "", "Output directory for exported objects")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagVersion > 0 {
		cfg.Export.Version = *flagVersion
	}
	if *flagType != "" {
		cfg.Export.Type = *flagType
	}
	if *flagStrict {
		cfg.Export.Strict = true
	}
	if *flagOutDir != "" {
		cfg.Paths.OutputDir = *flagOutDir
	}
}
