// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Prober.Inspect runs ffprobe and decodes streams and container metadata.
// Result helpers expose what the pipeline logs and what the region prompt
// shows the user: frame dimensions, duration, size and audio presence.
package ffprobe
