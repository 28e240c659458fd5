// Package obj8 generates X-Plane OBJ8 object files from an in-memory scene
// description. The engine is a single-pass, stateful code generator: it
// builds a deduplicated vertex pool, then walks the scene emitting geometry
// and attribute directives, filtered through a version/feature gate, while
// accumulating diagnostics instead of aborting on the first problem.
package obj8

import "fmt"

// Version is a target OBJ8 spec version, encoded the way X-Plane encodes
// it: major*100 + minor*10 (1150 is X-Plane 11.50).
type Version int

// Supported target versions.
const (
	Version1100 Version = 1100
	Version1130 Version = 1130
	Version1200 Version = 1200
	Version1210 Version = 1210
)

// AtLeast reports whether v meets a minimum version requirement.
func (v Version) AtLeast(min Version) bool {
	return v >= min
}

// Valid reports whether v is one of the supported target versions.
func (v Version) Valid() bool {
	switch v {
	case Version1100, Version1130, Version1200, Version1210:
		return true
	}
	return false
}

// String returns the version as written in export configuration, e.g. "1210".
func (v Version) String() string {
	return fmt.Sprintf("%d", int(v))
}

// ExportType declares the purpose of an export unit. It gates which
// directives are legal in the output.
type ExportType int

const (
	ExportAircraft ExportType = iota
	ExportCockpit
	ExportScenery
	ExportInstancedScenery
)

// String returns the configuration name of the export type.
func (t ExportType) String() string {
	switch t {
	case ExportAircraft:
		return "aircraft"
	case ExportCockpit:
		return "cockpit"
	case ExportScenery:
		return "scenery"
	case ExportInstancedScenery:
		return "instanced_scenery"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ParseExportType converts a configuration string to an ExportType.
func ParseExportType(s string) (ExportType, error) {
	switch s {
	case "aircraft":
		return ExportAircraft, nil
	case "cockpit":
		return ExportCockpit, nil
	case "scenery":
		return ExportScenery, nil
	case "instanced_scenery":
		return ExportInstancedScenery, nil
	}
	return 0, fmt.Errorf("%w: unknown export type %q", ErrConfiguration, s)
}

// TypeMask is a bitmask of export types a directive is legal for.
type TypeMask uint8

const (
	MaskAircraft TypeMask = 1 << iota
	MaskCockpit
	MaskScenery
	MaskInstancedScenery

	MaskAll      = MaskAircraft | MaskCockpit | MaskScenery | MaskInstancedScenery
	MaskAirplane = MaskAircraft | MaskCockpit
	MaskGround   = MaskScenery | MaskInstancedScenery
)

// Bit returns the mask bit for an export type.
func (t ExportType) Bit() TypeMask {
	return 1 << uint(t)
}

// Allows reports whether the mask permits the given export type.
func (m TypeMask) Allows(t ExportType) bool {
	return m&t.Bit() != 0
}

// GateResult is the outcome of passing a command through the feature gate.
type GateResult int

const (
	GateAllowed GateResult = iota
	GateDowngraded
	GateRejected
)

// Gate filters commands against the export's target version and type.
type Gate struct {
	Version Version
	Type    ExportType
}

// Allow checks a command against the gate. Rejected commands must not be
// emitted; where the command carries a fallback legal at the target
// version, the fallback is returned with GateDowngraded.
func (g Gate) Allow(c Command) (Command, GateResult) {
	if c.Types != 0 && !c.Types.Allows(g.Type) {
		return c, GateRejected
	}
	if c.MinVersion != 0 && !g.Version.AtLeast(c.MinVersion) {
		if c.Fallback != nil {
			if fb, res := g.Allow(*c.Fallback); res != GateRejected {
				return fb, GateDowngraded
			}
		}
		return c, GateRejected
	}
	return c, GateAllowed
}
