// Package transcribe provides the speech recognition engines behind
// captioning. Each engine extracts a mono 16 kHz WAV track from the video
// with ffmpeg, recognizes it, and returns per-word timings.
//
// Engines:
//   - WhisperX: runs WhisperX locally through uvx and reads its JSON output
//   - OpenAI: uploads the audio to the OpenAI transcription endpoint
//
// New selects the engine named by transcription.engine.
package transcribe
