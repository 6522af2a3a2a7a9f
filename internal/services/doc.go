// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, clip IDs, channels, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (authentication, lookup, external tool, configuration).
//   - A command runner abstraction that captures external tool diagnostics and
//     keeps ffmpeg, yt-dlp, and WhisperX invocations testable.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
