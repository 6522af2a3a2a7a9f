package captions

import (
	"context"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"clipforge/internal/services"
)

// FFmpegBurner renders subtitles into the video stream with ffmpeg's
// subtitles filter. Video is re-encoded with the configured codec; audio is
// copied.
type FFmpegBurner struct {
	binary   string
	codec    string
	fontsDir string
	run      services.CommandRunner
}

// BurnerOption configures an FFmpegBurner.
type BurnerOption func(*FFmpegBurner)

// WithCommandRunner overrides the ffmpeg invocation (primarily for tests).
func WithCommandRunner(runner services.CommandRunner) BurnerOption {
	return func(b *FFmpegBurner) {
		if runner != nil {
			b.run = runner
		}
	}
}

// NewFFmpegBurner builds a burner. fontsDir may be empty to rely on the
// system font configuration.
func NewFFmpegBurner(binary, codec, fontsDir string, opts ...BurnerOption) *FFmpegBurner {
	b := &FFmpegBurner{
		binary:   strings.TrimSpace(binary),
		codec:    strings.TrimSpace(codec),
		fontsDir: strings.TrimSpace(fontsDir),
		run:      services.RunCommand,
	}
	if b.binary == "" {
		b.binary = "ffmpeg"
	}
	if b.codec == "" {
		b.codec = "libx264"
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Args returns the ffmpeg arguments for a burn-in (without the binary).
func (b *FFmpegBurner) Args(videoPath, subtitlePath, outputPath string) []string {
	input := ffmpeg.Input(videoPath)
	filterArgs := ffmpeg.KwArgs{"filename": escapeOptionValue(subtitlePath)}
	if b.fontsDir != "" {
		filterArgs["fontsdir"] = escapeOptionValue(b.fontsDir)
	}
	video := input.Video().Filter("subtitles", ffmpeg.Args{}, filterArgs)
	out := ffmpeg.Output([]*ffmpeg.Stream{video, input.Audio()}, outputPath, ffmpeg.KwArgs{
		"c:v": b.codec,
		"c:a": "copy",
	}).OverWriteOutput()
	return append([]string{"-hide_banner", "-loglevel", "error"}, out.GetArgs()...)
}

// optionValueEscaper applies the filter option level of ffmpeg escaping.
// ffmpeg-go escapes only the filtergraph level of kwarg values.
var optionValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

func escapeOptionValue(value string) string {
	return optionValueEscaper.Replace(value)
}

// Burn writes outputPath with the subtitles in subtitlePath rendered onto
// videoPath.
func (b *FFmpegBurner) Burn(ctx context.Context, videoPath, subtitlePath, outputPath string) error {
	if err := b.run(ctx, b.binary, b.Args(videoPath, subtitlePath, outputPath)...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "captions", "burn subtitles", "ffmpeg failed", err)
	}
	return nil
}
