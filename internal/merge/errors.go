package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// The merge fails with exactly one of four error kinds so callers can
// branch on which input or invariant is broken: *TemplateParseError,
// *DestinationParseError, *StructuralError, or *ConfigError.

// TemplateParseError reports that the template document failed to parse.
type TemplateParseError struct {
	Err error
}

func (e *TemplateParseError) Error() string {
	return fmt.Sprintf("template parse: %v", e.Err)
}

func (e *TemplateParseError) Unwrap() error { return e.Err }

// Diagnostics returns the underlying parser diagnostics, if any.
func (e *TemplateParseError) Diagnostics() []rbs.Diagnostic {
	return parseDiagnostics(e.Err)
}

// DestinationParseError reports that the destination document failed to
// parse. It is distinct from TemplateParseError so callers can tell which
// file needs fixing.
type DestinationParseError struct {
	Err error
}

func (e *DestinationParseError) Error() string {
	return fmt.Sprintf("destination parse: %v", e.Err)
}

func (e *DestinationParseError) Unwrap() error { return e.Err }

// Diagnostics returns the underlying parser diagnostics, if any.
func (e *DestinationParseError) Diagnostics() []rbs.Diagnostic {
	return parseDiagnostics(e.Err)
}

func parseDiagnostics(err error) []rbs.Diagnostic {
	var pe *rbs.ParseError
	if errors.As(err, &pe) {
		return pe.Diagnostics
	}
	return nil
}

// Violation identifies one declaration that partially overlaps a protected
// region.
type Violation struct {
	Kind      rbs.DeclKind
	Name      string
	StartLine int
	EndLine   int
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s (lines %d-%d)", v.Kind, v.Name, v.StartLine, v.EndLine)
}

// StructuralError reports a protected region that partially overlaps one or
// more declarations. Every declaration may only be fully inside the region
// or fully wrap it.
type StructuralError struct {
	RegionStart int
	RegionEnd   int
	Violations  []Violation
}

func (e *StructuralError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("protected region (lines %d-%d) partially overlaps: %s",
		e.RegionStart, e.RegionEnd, strings.Join(parts, ", "))
}

// ConfigError reports an invalid merge configuration. It is raised at
// construction time, before any parsing work.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("merge config: %s", e.Reason)
}
