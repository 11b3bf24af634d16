package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"gen3utils/internal/common"
)

// Diagnostics holds all diagnostic information from a validation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single structured validation problem.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Kind is the error category, rendered as "<Kind> error".
	Kind Kind
	// Message is the human-readable description.
	Message string
	// Index is the ETL index (doc_type) this relates to, if any.
	Index string
	// FieldPath identifies the offending field or path, if any.
	FieldPath string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticError DiagnosticSeverity = iota
	DiagnosticWarning
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// New returns an error diagnostic of the given kind.
func New(kind Kind, format string, args ...any) Diagnostic {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return Diagnostic{Severity: DiagnosticError, Kind: kind, Message: msg}
}

// Properties reports a missing or invalid property attribute.
func Properties(format string, args ...any) Diagnostic {
	return New(KindProperties, format, args...)
}

// Path reports a path segment that the dictionary does not know.
func Path(path string) Diagnostic {
	d := New(KindPath, "%s does not exist in this dictionary", path)
	d.FieldPath = path

	return d
}

// Field reports a referenced field that is absent from its scope.
func Field(format string, args ...any) Diagnostic {
	return New(KindField, format, args...)
}

// FieldSyntax reports a required configuration field that is absent.
func FieldSyntax(path string) Diagnostic {
	d := New(KindFieldSyntax, "%s is required", path)
	d.FieldPath = path

	return d
}

// Function reports an unsupported aggregation function.
func Function(format string, args ...any) Diagnostic {
	return New(KindFunction, format, args...)
}

// Format reports a document whose shape does not match what is expected.
func Format(format string, args ...any) Diagnostic {
	return New(KindFormat, format, args...)
}

// Manifest reports a service manifest requirement violation.
func Manifest(format string, args ...any) Diagnostic {
	return New(KindManifest, format, args...)
}

// WithIndex returns a copy of d attached to the given index.
func (d Diagnostic) WithIndex(index string) Diagnostic {
	d.Index = index
	return d
}

// WithSuggestions returns a copy of d carrying the given suggestions.
func (d Diagnostic) WithSuggestions(s ...string) Diagnostic {
	if len(s) > 0 {
		d.Suggestions = append([]string(nil), s...)
	}

	return d
}

// Equal reports whether two diagnostics carry the same kind and message.
func (d Diagnostic) Equal(other Diagnostic) bool {
	return d.Kind == other.Kind && d.Message == other.Message
}

// String renders the diagnostic as "<Kind> error: <message>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s error: %s", d.Kind, d.Message)
}

// Add appends a diagnostic, routing it by severity.
func (d *Diagnostics) Add(items ...Diagnostic) {
	for _, it := range items {
		if it.Severity == DiagnosticWarning {
			d.Warnings = append(d.Warnings, it)
			continue
		}

		d.Errors = append(d.Errors, it)
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Strings renders every error diagnostic.
func (d *Diagnostics) Strings() []string {
	out := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		out = append(out, e.String())
	}

	return out
}

// Err returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Err() error {
	if d.IsValid() {
		return nil
	}

	return errors.New(strings.Join(d.Strings(), "; "))
}
