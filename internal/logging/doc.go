// Package logging assembles structured slog loggers and formatting helpers used
// across clipforge.
//
// It owns the console and JSON handlers, level parsing, output plumbing
// (stderr plus a log file), per-run JSON logs, and context-aware helpers so
// pipeline code automatically tags lines with the run id, channel, clip id
// and stage. A no-op logger is provided for tests.
package logging
