package selection

import (
	"context"
	"fmt"
	"strings"

	"clipforge/internal/services"
)

// Command runs an external picker with the preview frame path as its last
// argument. The picker prints the webcam and gameplay rectangles as two
// "x,y,w,h" lines; no output cancels.
type Command struct {
	argv   []string
	frames frameGrabber
	output services.OutputRunner
}

// CommandOption configures a Command selector.
type CommandOption func(*Command)

// WithCommandRunners replaces ffmpeg and picker execution (for testing).
func WithCommandRunners(ffmpegRunner services.CommandRunner, picker services.OutputRunner) CommandOption {
	return func(c *Command) {
		if ffmpegRunner != nil {
			c.frames.run = ffmpegRunner
		}
		if picker != nil {
			c.output = picker
		}
	}
}

// NewCommand parses commandLine (whitespace separated) into a picker.
func NewCommand(commandLine, ffmpegBinary, workDir string, opts ...CommandOption) (*Command, error) {
	argv := strings.Fields(commandLine)
	if len(argv) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "select", "picker", "picker command is empty", nil)
	}
	c := &Command{
		argv:   argv,
		frames: frameGrabber{ffmpegBinary: ffmpegBinary, workDir: workDir, run: services.RunCommand},
		output: services.CommandOutput,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Select implements Selector.
func (c *Command) Select(ctx context.Context, videoPath string) (Selection, error) {
	framePath, err := c.frames.grab(ctx, videoPath)
	if err != nil {
		return Selection{}, err
	}
	defer removeFrame(framePath)

	args := append(append([]string{}, c.argv[1:]...), framePath)
	out, err := c.output(ctx, c.argv[0], args...)
	if err != nil {
		if ctx.Err() != nil {
			return Selection{}, ctx.Err()
		}
		return Selection{}, services.Wrap(services.ErrExternalTool, "select", "picker", c.argv[0], err)
	}

	var lines []string
	for line := range strings.Lines(string(out)) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Selection{Cancelled: true}, nil
	}
	if len(lines) < 2 {
		return Selection{}, services.Wrap(services.ErrValidation, "select", "picker",
			fmt.Sprintf("expected 2 regions, got %d line(s)", len(lines)), nil)
	}
	webcam, err := parseRegion("webcam", lines[0])
	if err != nil {
		return Selection{}, services.Wrap(services.ErrValidation, "select", "picker", "", err)
	}
	gameplay, err := parseRegion("gameplay", lines[1])
	if err != nil {
		return Selection{}, services.Wrap(services.ErrValidation, "select", "picker", "", err)
	}
	return newSelection(webcam, gameplay), nil
}
