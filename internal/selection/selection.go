package selection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"clipforge/internal/layout"
	"clipforge/internal/services"
)

// Selection is the outcome of region selection.
type Selection struct {
	Webcam    layout.Region
	Gameplay  layout.Region
	Cancelled bool
}

// Selector chooses the webcam and gameplay regions for a video.
type Selector interface {
	Select(ctx context.Context, videoPath string) (Selection, error)
}

// newSelection marks the selection cancelled when either region is degenerate.
func newSelection(webcam, gameplay layout.Region) Selection {
	return Selection{
		Webcam:    webcam,
		Gameplay:  gameplay,
		Cancelled: webcam.IsZero() || gameplay.IsZero(),
	}
}

// Preset returns fixed regions.
type Preset struct {
	Webcam   layout.Region
	Gameplay layout.Region
}

// Select implements Selector.
func (p Preset) Select(context.Context, string) (Selection, error) {
	return newSelection(p.Webcam, p.Gameplay), nil
}

// frameGrabber extracts the first video frame as a PNG.
type frameGrabber struct {
	ffmpegBinary string
	workDir      string
	run          services.CommandRunner
}

func (g frameGrabber) args(videoPath, framePath string) []string {
	args := ffmpeg.Input(videoPath).
		Output(framePath, ffmpeg.KwArgs{"frames:v": 1}).
		OverWriteOutput().
		GetArgs()
	return append([]string{"-hide_banner", "-loglevel", "error"}, args...)
}

func (g frameGrabber) grab(ctx context.Context, videoPath string) (string, error) {
	dir := g.workDir
	if dir == "" {
		dir = filepath.Dir(videoPath)
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	framePath := filepath.Join(dir, "frame_"+base+".png")
	binary := g.ffmpegBinary
	if binary == "" {
		binary = "ffmpeg"
	}
	run := g.run
	if run == nil {
		run = services.RunCommand
	}
	if err := run(ctx, binary, g.args(videoPath, framePath)...); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "select", "extract frame", filepath.Base(videoPath), err)
	}
	return framePath, nil
}

func removeFrame(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// parseRegion parses one "x,y,w,h" answer.
func parseRegion(label, value string) (layout.Region, error) {
	region, err := layout.ParseRect(value)
	if err != nil {
		return layout.Region{}, fmt.Errorf("%s region: %w", label, err)
	}
	return region, nil
}
