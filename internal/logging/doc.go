// Package logging constructs the process-wide slog logger and provides
// attribute helpers shared across components.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log aggregation. Components tag their loggers with
// NewComponentLogger so the console handler can render the component as a
// message prefix.
package logging
