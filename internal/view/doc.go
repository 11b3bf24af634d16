// Package view provides output formatting and logging for the gen3utils CLI.
//
// Output flows CLI → Viewer → Stream → io.Writer. Viewers render results
// as human text or JSON; logs always go to the error stream so JSON
// results stay parseable.
package view
