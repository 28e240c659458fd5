package obj8

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Config selects the target of one export run.
type Config struct {
	// Version is the OBJ spec version to target. Directives newer than
	// this are downgraded where possible and dropped otherwise.
	Version Version

	// Type is the export purpose; it gates type-restricted directives.
	Type ExportType

	// Strict aborts the export when any error-severity diagnostic is
	// recorded instead of dropping the offending directives.
	Strict bool
}

func (c Config) validate() error {
	if !c.Version.Valid() {
		return fmt.Errorf("%w: unsupported target version %d", ErrConfiguration, int(c.Version))
	}
	if c.Type.String() == fmt.Sprintf("Unknown(%d)", int(c.Type)) {
		return fmt.Errorf("%w: unknown export type %d", ErrConfiguration, int(c.Type))
	}
	return nil
}

// ResultCode summarizes how an export run ended.
type ResultCode int

const (
	// Success means a clean export with no diagnostics above info.
	Success ResultCode = iota

	// SuccessWithWarnings means output was produced but some directives
	// were downgraded or are worth reviewing.
	SuccessWithWarnings

	// FailedValidation means the scene had errors. Outside strict mode
	// output is still produced with the offending directives dropped.
	FailedValidation

	// FailedFatal means an internal invariant broke and no trustworthy
	// output exists.
	FailedFatal
)

// String returns a short name for the result code.
func (c ResultCode) String() string {
	switch c {
	case Success:
		return "success"
	case SuccessWithWarnings:
		return "success with warnings"
	case FailedValidation:
		return "failed validation"
	case FailedFatal:
		return "failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Result is the outcome of one export run: the rendered file (empty when no
// output could be produced) and every diagnostic accumulated on the way.
type Result struct {
	Code   ResultCode
	Output string
	Report *Report
}

// Export renders scene as an OBJ8 file for the given target. The returned
// error is non-nil only when no usable output exists: a bad configuration,
// a broken internal invariant, or any scene error under strict mode. In
// lenient mode scene errors drop their directives and are reported through
// the Result.
func Export(scene *Scene, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return &Result{Code: FailedFatal, Report: &Report{}}, err
	}
	if scene == nil {
		return &Result{Code: FailedFatal, Report: &Report{}},
			fmt.Errorf("%w: nil scene", ErrState)
	}

	report := &Report{}
	g := newGenerator(cfg, report)
	g.hasParticleSystem = scene.Header.ParticleSystem != ""

	if scene.Root != nil {
		if err := g.collect(scene.Root, mgl32.Ident4(), ""); err != nil {
			return &Result{Code: FailedFatal, Report: report}, err
		}
	}
	g.table.Finalize()

	var b strings.Builder
	writeHeader(&b, scene, cfg, g.table, g.machine, report)
	g.table.WriteTo(&b)

	body := &stream{gate: Gate{Version: cfg.Version, Type: cfg.Type}, report: report}
	if scene.Root != nil {
		g.emit(body, scene.Root, mgl32.Ident4(), "")
	}
	if g.animDepth != 0 {
		return &Result{Code: FailedFatal, Report: report},
			fmt.Errorf("%w: unbalanced animation bracket (depth %d at end of walk)",
				ErrState, g.animDepth)
	}

	if len(body.cmds) > 0 {
		b.WriteByte('\n')
		body.write(&b)
	}

	res := &Result{Output: b.String(), Report: report}
	switch {
	case report.HasErrors():
		res.Code = FailedValidation
	case len(report.Warnings()) > 0:
		res.Code = SuccessWithWarnings
	default:
		res.Code = Success
	}

	if cfg.Strict && report.HasErrors() {
		res.Output = ""
		errs := report.Errors()
		return res, fmt.Errorf("%w: %d error(s) in strict mode; first: %s",
			errs[0].Class, len(errs), errs[0].Message)
	}
	return res, nil
}

// Validate runs the full export pipeline and returns its diagnostics
// without producing output. The report is complete: every problem a real
// export would hit is recorded.
func Validate(scene *Scene, cfg Config) *Report {
	cfg.Strict = false
	res, err := Export(scene, cfg)
	if err != nil && res.Report != nil {
		res.Report.Errorf(ErrState, "", "", "%v", err)
	}
	return res.Report
}

// ExportFile exports scene and writes the result to path atomically: the
// output lands in a temp file beside the target and is renamed into place
// only on success, so a failed run never truncates an existing object.
func ExportFile(path string, scene *Scene, cfg Config) (*Result, error) {
	res, err := Export(scene, cfg)
	if err != nil {
		return res, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return res, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(res.Output); err != nil {
		tmp.Close()
		return res, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return res, fmt.Errorf("rename into %s: %w", path, err)
	}
	return res, nil
}
