// Package diagnostic provides the structured errors and warnings reported
// by the mapping, portal config and manifest validators.
//
// A Diagnostic carries a Kind (properties, path, field, field syntax,
// function, format or manifest), the index it belongs to, the offending
// field and close-match suggestions. Diagnostics are values, not Go
// errors; Diagnostics.Err joins them when a single error is needed.
package diagnostic
