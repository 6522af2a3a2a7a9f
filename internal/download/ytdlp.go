package download

import (
	"context"
	"strings"

	"clipforge/internal/services"
	"clipforge/internal/twitch"
)

// DefaultFormat prefers separate MP4/M4A streams merged into MP4.
const DefaultFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// YTDLP fetches clips with the yt-dlp binary.
type YTDLP struct {
	binary string
	format string
	run    services.CommandRunner
}

// YTDLPOption configures a YTDLP fetcher.
type YTDLPOption func(*YTDLP)

// WithYTDLPRunner replaces process execution (for testing).
func WithYTDLPRunner(runner services.CommandRunner) YTDLPOption {
	return func(y *YTDLP) {
		if runner != nil {
			y.run = runner
		}
	}
}

// NewYTDLP returns a yt-dlp fetcher.
func NewYTDLP(binary, format string, opts ...YTDLPOption) *YTDLP {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	if strings.TrimSpace(format) == "" {
		format = DefaultFormat
	}
	y := &YTDLP{binary: binary, format: format, run: services.RunCommand}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Args returns the yt-dlp invocation for clip.
func (y *YTDLP) Args(clip twitch.Clip, dest string) []string {
	return []string{
		"-f", y.format,
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--merge-output-format", "mp4",
		"--force-overwrites",
		"-o", dest,
		clip.URL,
	}
}

// Fetch downloads clip to dest.
func (y *YTDLP) Fetch(ctx context.Context, clip twitch.Clip, dest string) error {
	if strings.TrimSpace(clip.URL) == "" {
		return services.Wrap(services.ErrValidation, "download", "yt-dlp", "clip has no url", nil)
	}
	if err := y.run(ctx, y.binary, y.Args(clip, dest)...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "", err)
	}
	return nil
}
