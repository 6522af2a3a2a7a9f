// Package language normalizes the transcription language hint. Users may
// write "en", "eng", "en-US" or "English"; speech engines expect ISO 639-1.
package language
