// Package pipeline turns one Twitch channel into one captioned vertical short.
//
// A run authenticates, lists the channel's clips, downloads the first
// candidate that succeeds, asks for the webcam and gameplay regions,
// composites the 1080x1920 video, burns captions, and moves the result into
// the output directory. Runs are strictly sequential and hold an exclusive
// lock on the work directory; every intermediate file is removed when the
// run ends unless pipeline.keep_intermediates is set.
//
// Expected non-success endings (no clips, cancelled selection) are reported
// through Result.Status. Everything else is an error tagged with a services
// marker.
package pipeline
