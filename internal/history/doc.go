// Package history persists one row per pipeline run in a SQLite database
// under the state directory.
//
// The pipeline records every outcome (completed, no clips, cancelled,
// failed). Processed answers whether a clip already produced a short so
// repeat runs can move on to the next candidate, and Recent feeds the
// `clipforge history` command.
package history
