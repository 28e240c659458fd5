package obj8

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Engine error classes. Diagnostics carry one of these so callers can tell
// a bad parameter from a bad feature combination from an internal fault.
var (
	// ErrValidation marks a parameter outside its documented range. The
	// offending directive is dropped and generation continues.
	ErrValidation = errors.New("validation error")

	// ErrConfiguration marks a mutually-exclusive or export-type-illegal
	// feature combination. Recoverable outside strict mode.
	ErrConfiguration = errors.New("configuration error")

	// ErrCompatibility marks a directive requiring a newer OBJ version
	// than the export targets. Downgraded where a path exists, else dropped.
	ErrCompatibility = errors.New("compatibility error")

	// ErrState marks an internal invariant violation (insert into a
	// finalized vertex table, unbalanced animation bracket). Always fatal.
	ErrState = errors.New("state error")
)

// Severity classifies a diagnostic record.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Diagnostic is one issue found before or during generation. Node and
// Directive locate the problem in the source scene; either may be empty.
type Diagnostic struct {
	Severity  Severity
	Class     error // one of ErrValidation, ErrConfiguration, ErrCompatibility, ErrState; nil for plain info
	Node      string
	Directive string
	Message   string
}

// String formats the diagnostic as "severity: [node] (DIRECTIVE) message".
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	if d.Node != "" {
		fmt.Fprintf(&b, "[%s] ", d.Node)
	}
	if d.Directive != "" {
		fmt.Fprintf(&b, "(%s) ", d.Directive)
	}
	b.WriteString(d.Message)
	return b.String()
}

// Report accumulates diagnostics across one export. Generation does not
// abort on errors unless the export runs in strict mode, so one pass can
// surface every problem in the scene.
type Report struct {
	records []Diagnostic
}

// Errorf records an error diagnostic.
func (r *Report) Errorf(class error, node, directive, format string, args ...any) {
	r.records = append(r.records, Diagnostic{
		Severity: SeverityError, Class: class,
		Node: node, Directive: directive,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning diagnostic.
func (r *Report) Warnf(class error, node, directive, format string, args ...any) {
	r.records = append(r.records, Diagnostic{
		Severity: SeverityWarning, Class: class,
		Node: node, Directive: directive,
		Message: fmt.Sprintf(format, args...),
	})
}

// Infof records an informational diagnostic.
func (r *Report) Infof(node, directive, format string, args ...any) {
	r.records = append(r.records, Diagnostic{
		Severity: SeverityInfo,
		Node:     node, Directive: directive,
		Message: fmt.Sprintf(format, args...),
	})
}

// All returns every record in insertion order.
func (r *Report) All() []Diagnostic {
	return r.records
}

// Errors returns only the error-severity records.
func (r *Report) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

// Warnings returns only the warning-severity records.
func (r *Report) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Infos returns only the info-severity records.
func (r *Report) Infos() []Diagnostic {
	return r.filter(SeverityInfo)
}

// HasErrors reports whether any error-severity record was accumulated.
func (r *Report) HasErrors() bool {
	for _, d := range r.records {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Report) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.records {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// datarefPattern matches the character set X-Plane accepts in dataref
// paths: path segments of word characters with optional array subscripts.
var datarefPattern = regexp.MustCompile(`^[A-Za-z0-9_./:\-]+(\[[0-9]+\])?$`)

// ValidDataref reports whether s is shaped like a dataref path.
func ValidDataref(s string) bool {
	return s != "" && datarefPattern.MatchString(s)
}

// supportedTextureExts are the texture formats X-Plane loads.
var supportedTextureExts = []string{".png", ".dds", ".jpg", ".jpeg"}

// checkTexturePath validates a texture reference and records diagnostics.
// Existence checks belong to the host; this only checks shape.
func checkTexturePath(report *Report, node, directive, path string) bool {
	if path == "" {
		report.Errorf(ErrValidation, node, directive, "texture path is empty")
		return false
	}
	if strings.ContainsAny(path, "\\") {
		report.Warnf(ErrValidation, node, directive,
			"texture path %q uses backslashes; forward slashes required", path)
	}
	lower := strings.ToLower(path)
	for _, ext := range supportedTextureExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	report.Warnf(ErrValidation, node, directive,
		"texture path %q does not use a supported format (png, dds, jpg)", path)
	return true
}
