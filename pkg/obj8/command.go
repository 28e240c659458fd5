package obj8

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/justinwol/xplane-obj8/pkg/coords"
)

// CommandKind tags the variant of an emitted command.
type CommandKind int

const (
	CmdGeometry CommandKind = iota
	CmdAttribute
	CmdAnimation
	CmdComment
)

// Command is one directive of the output body. Commands are produced in a
// single forward pass and never mutated after emission.
type Command struct {
	Kind      CommandKind
	Directive string
	Args      []string

	// MinVersion is the lowest target version the directive is legal
	// for; zero means no restriction.
	MinVersion Version

	// Types restricts the directive to export types. Zero means all.
	Types TypeMask

	// Fallback, when set, is the documented downgrade emitted instead of
	// this command on older targets.
	Fallback *Command

	// Node locates the directive's origin for diagnostics.
	Node string

	// Indent is the animation nesting depth at emission time.
	Indent int
}

// String serializes the command as one OBJ line, without trailing newline.
func (c Command) String() string {
	var b strings.Builder
	for i := 0; i < c.Indent; i++ {
		b.WriteByte('\t')
	}
	if c.Kind == CmdComment {
		b.WriteString("# ")
		b.WriteString(c.Directive)
		return b.String()
	}
	b.WriteString(c.Directive)
	for _, a := range c.Args {
		b.WriteByte('\t')
		b.WriteString(a)
	}
	return b.String()
}

// fargs formats floats as fixed-precision argument tokens.
func fargs(vals ...float32) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = coords.FormatFloat(v)
	}
	return out
}

// vecArgs formats an export-space vector as three argument tokens.
func vecArgs(v mgl32.Vec3) []string {
	return fargs(v.X(), v.Y(), v.Z())
}

// stream is the ordered command list under construction. Every append
// passes the version/feature gate; rejected commands become diagnostics,
// never output.
type stream struct {
	gate   Gate
	report *Report
	cmds   []Command
	indent int
}

// add gates and appends a command. It returns the gate result so callers
// that must keep auxiliary state in sync (the attribute machine) can tell
// whether the directive made it into the stream.
func (s *stream) add(c Command) GateResult {
	c.Indent = s.indent
	gated, res := s.gate.Allow(c)
	switch res {
	case GateRejected:
		if c.Types != 0 && !c.Types.Allows(s.gate.Type) {
			s.report.Errorf(ErrConfiguration, c.Node, c.Directive,
				"not legal for export type %q", s.gate.Type)
		} else {
			s.report.Warnf(ErrCompatibility, c.Node, c.Directive,
				"requires OBJ version %s, target is %s; dropped",
				c.MinVersion, s.gate.Version)
		}
	case GateDowngraded:
		s.report.Warnf(ErrCompatibility, c.Node, c.Directive,
			"downgraded to %s for target version %s",
			gated.Directive, s.gate.Version)
		gated.Indent = s.indent
		s.cmds = append(s.cmds, gated)
	case GateAllowed:
		s.cmds = append(s.cmds, gated)
	}
	return res
}

// write renders the whole stream, one line per command.
func (s *stream) write(b *strings.Builder) {
	for _, c := range s.cmds {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
}
