// Package compose renders a layout.Plan into a vertical video with ffmpeg.
package compose

import (
	"context"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"clipforge/internal/layout"
	"clipforge/internal/services"
)

// Composer builds and runs the crop/scale/vstack filter graph.
type Composer struct {
	binary     string
	videoCodec string
	audioCodec string
	run        services.CommandRunner
}

// Option configures a Composer.
type Option func(*Composer)

// WithCommandRunner overrides the ffmpeg invocation (primarily for tests).
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(c *Composer) {
		if runner != nil {
			c.run = runner
		}
	}
}

// New returns a Composer. Empty values fall back to ffmpeg, libx264 and
// stream-copied audio.
func New(binary, videoCodec, audioCodec string, opts ...Option) *Composer {
	c := &Composer{
		binary:     fallback(binary, "ffmpeg"),
		videoCodec: fallback(videoCodec, "libx264"),
		audioCodec: fallback(audioCodec, "copy"),
		run:        services.RunCommand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Args returns the ffmpeg arguments (without the binary) that render plan
// from input into output.
//
// The graph splits the input video into two branches, crops and scales each
// according to plan, stacks webcam above gameplay and maps the input audio
// unchanged.
func (c *Composer) Args(plan layout.Plan, input, output string) []string {
	src := ffmpeg.Input(input)
	webcam := branch(src.Video(), plan.Webcam)
	gameplay := branch(src.Video(), plan.Gameplay)
	stacked := ffmpeg.Filter([]*ffmpeg.Stream{webcam, gameplay}, "vstack", ffmpeg.Args{"inputs=2"})

	out := ffmpeg.Output([]*ffmpeg.Stream{stacked, src.Audio()}, output, ffmpeg.KwArgs{
		"c:v":      c.videoCodec,
		"c:a":      c.audioCodec,
		"movflags": "+faststart",
	}).OverWriteOutput()
	return append([]string{"-hide_banner", "-loglevel", "error"}, out.GetArgs()...)
}

// Compose renders plan from input into output.
func (c *Composer) Compose(ctx context.Context, plan layout.Plan, input, output string) error {
	if err := c.run(ctx, c.binary, c.Args(plan, input, output)...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "compose", "ffmpeg", "vertical layout render failed", err)
	}
	return nil
}

func branch(video *ffmpeg.Stream, step layout.Step) *ffmpeg.Stream {
	return video.
		Crop(step.Crop.X, step.Crop.Y, step.Crop.Width, step.Crop.Height).
		Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{"w": strconv.Itoa(step.Scale.Width), "h": strconv.Itoa(step.Scale.Height)})
}

func fallback(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
