// Package captions turns word-level transcription timings into burned-in
// subtitles.
//
// The pure pieces (FormatTimestamp, BuildCues, WriteASS) have no I/O beyond
// an io.Writer. Captioner wires them to a Transcriber and an ffmpeg Burner:
// transcribe, build cues, write a temporary .ass file, burn it in, remove the
// file. A transcript with no usable words is a skip, not an error.
package captions
