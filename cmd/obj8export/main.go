// obj8export is a CLI utility for exporting scenes to X-Plane OBJ8 objects.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/justinwol/xplane-obj8/internal/config"
	"github.com/justinwol/xplane-obj8/internal/gltfscene"
	"github.com/justinwol/xplane-obj8/internal/logger"
	"github.com/justinwol/xplane-obj8/internal/scenefile"
	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		cmdExport(args)
	case "validate", "check":
		cmdValidate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`obj8export - X-Plane OBJ8 object exporter

Usage:
  obj8export <command> [options]

Commands:
  export <scene> [options]    Export a scene to an OBJ8 object file
  validate <scene> [options]  Check a scene without writing output

Scene files may be YAML scene descriptions (.yaml) or glTF assets
(.gltf, .glb).

Options:
  -o <path>          Output file (default: scene name + .obj)
  -obj-version <v>   Target OBJ version: 1100, 1130, 1200, 1210
  -type <t>          Export type: aircraft, cockpit, scenery, instanced_scenery
  -strict            Abort on the first validation error

Examples:
  obj8export export cockpit.yaml -type cockpit -o cockpit.obj
  obj8export export fuselage.glb -obj-version 1200
  obj8export validate scenery.yaml -type instanced_scenery`)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "Output file path")
	version := fs.Int("obj-version", 0, "Target OBJ version")
	exportType := fs.String("type", "", "Export type")
	strict := fs.Bool("strict", false, "Abort on the first validation error")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: obj8export export <scene> [options]")
		os.Exit(1)
	}

	cfg, engineCfg := loadConfig(*version, *exportType, *strict)
	scene := loadScene(fs.Arg(0))

	outPath := *out
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(fs.Arg(0)), filepath.Ext(fs.Arg(0)))
		outPath = filepath.Join(cfg.Paths.OutputDir, base+".obj")
	}

	res, err := obj8.ExportFile(outPath, scene, engineCfg)
	if res != nil {
		printReport(res.Report)
	}
	if err != nil {
		logger.Sugar.Errorf("export failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Sugar.Infof("wrote %s (%s, %d diagnostics)",
		outPath, res.Code, len(res.Report.All()))
	logger.Sync()
	if res.Code == obj8.FailedValidation {
		os.Exit(1)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	version := fs.Int("obj-version", 0, "Target OBJ version")
	exportType := fs.String("type", "", "Export type")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: obj8export validate <scene> [options]")
		os.Exit(1)
	}

	_, engineCfg := loadConfig(*version, *exportType, false)
	scene := loadScene(fs.Arg(0))

	report := obj8.Validate(scene, engineCfg)
	printReport(report)

	errs := len(report.Errors())
	warns := len(report.Warnings())
	fmt.Printf("%d error(s), %d warning(s)\n", errs, warns)
	logger.Sync()
	if errs > 0 {
		os.Exit(1)
	}
}

// loadConfig loads the tool configuration, applies command-line overrides
// and initializes logging.
func loadConfig(version int, exportType string, strict bool) (*config.Config, obj8.Config) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if version > 0 {
		cfg.Export.Version = version
	}
	if exportType != "" {
		cfg.Export.Type = exportType
	}
	if strict {
		cfg.Export.Strict = true
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engineCfg, err := cfg.ExportConfig()
	if err != nil {
		logger.Sugar.Errorf("bad export configuration: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	return cfg, engineCfg
}

// loadScene picks the loader by file extension.
func loadScene(path string) *obj8.Scene {
	var (
		scene *obj8.Scene
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scene, err = scenefile.Load(path)
	case ".gltf", ".glb":
		scene, err = gltfscene.Load(path)
	default:
		err = fmt.Errorf("unsupported scene format %q", filepath.Ext(path))
	}
	if err != nil {
		logger.Sugar.Errorf("loading %s: %v", path, err)
		logger.Sync()
		os.Exit(1)
	}
	return scene
}

// printReport writes diagnostics to stdout, errors first.
func printReport(r *obj8.Report) {
	if r == nil {
		return
	}
	for _, d := range r.All() {
		fmt.Println(d.String())
	}
}
