package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"clipforge/internal/layout"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/services"
)

const promptAttempts = 3

// Prober reports frame dimensions.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Prompt asks for the regions on a terminal.
type Prompt struct {
	frames frameGrabber
	prober Prober
	in     *bufio.Reader
	out    io.Writer
}

// PromptOption configures a Prompt.
type PromptOption func(*Prompt)

// WithPromptRunner replaces ffmpeg execution (for testing).
func WithPromptRunner(runner services.CommandRunner) PromptOption {
	return func(p *Prompt) {
		if runner != nil {
			p.frames.run = runner
		}
	}
}

// NewPrompt returns a terminal selector reading answers from in.
func NewPrompt(ffmpegBinary, workDir string, prober Prober, in io.Reader, out io.Writer, opts ...PromptOption) *Prompt {
	p := &Prompt{
		frames: frameGrabber{ffmpegBinary: ffmpegBinary, workDir: workDir, run: services.RunCommand},
		prober: prober,
		in:     bufio.NewReader(in),
		out:    out,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select implements Selector. An empty answer, "c", or end of input cancels.
func (p *Prompt) Select(ctx context.Context, videoPath string) (Selection, error) {
	framePath, err := p.frames.grab(ctx, videoPath)
	if err != nil {
		return Selection{}, err
	}
	defer removeFrame(framePath)

	fmt.Fprintf(p.out, "Preview frame: %s\n", framePath)
	if p.prober != nil {
		if result, err := p.prober.Inspect(ctx, framePath); err == nil {
			if w, h := result.Dimensions(); w > 0 && h > 0 {
				fmt.Fprintf(p.out, "Frame size: %dx%d\n", w, h)
			}
		}
	}

	webcam, ok, err := p.ask(ctx, "WEBCAM")
	if err != nil || !ok {
		return Selection{Cancelled: true}, err
	}
	gameplay, ok, err := p.ask(ctx, "GAMEPLAY")
	if err != nil || !ok {
		return Selection{Cancelled: true}, err
	}
	return newSelection(webcam, gameplay), nil
}

func (p *Prompt) ask(ctx context.Context, label string) (layout.Region, bool, error) {
	for range promptAttempts {
		if err := ctx.Err(); err != nil {
			return layout.Region{}, false, err
		}
		fmt.Fprintf(p.out, "%s region as x,y,w,h (empty or c to cancel): ", label)
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return layout.Region{}, false, fmt.Errorf("read %s region: %w", strings.ToLower(label), err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" || strings.EqualFold(answer, "c") {
			return layout.Region{}, false, nil
		}
		region, parseErr := parseRegion(strings.ToLower(label), answer)
		if parseErr == nil {
			return region, true, nil
		}
		fmt.Fprintf(p.out, "  %v\n", parseErr)
		if errors.Is(err, io.EOF) {
			return layout.Region{}, false, nil
		}
	}
	return layout.Region{}, false, services.Wrap(services.ErrValidation, "select", strings.ToLower(label),
		fmt.Sprintf("no valid region after %d attempts", promptAttempts), nil)
}
