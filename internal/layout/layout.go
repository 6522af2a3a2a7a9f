// Package layout maps the two user-selected source regions onto the fixed
// vertical canvas: webcam on top, gameplay below.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CanvasWidth is the width of every output video.
	CanvasWidth = 1080
	// WebcamHeight is the scaled height of the webcam band.
	WebcamHeight = 840
	// GameplayHeight is the scaled height of the gameplay band.
	GameplayHeight = 1080
)

// Region is an axis-aligned rectangle in source-frame pixels given by its
// top-left (X1, Y1) and bottom-right (X2, Y2) corners.
type Region struct {
	X1, Y1, X2, Y2 int
}

// RegionFromRect converts the origin+size form produced by selection tools.
func RegionFromRect(x, y, w, h int) Region {
	return Region{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// IsZero reports the degenerate all-zero selection that signals a cancel.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Width returns X2-X1.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Crop returns the ffmpeg crop parameters for the region.
func (r Region) Crop() Crop {
	return Crop{X: r.X1, Y: r.Y1, Width: r.Width(), Height: r.Height()}
}

// String renders the region in "x,y,w,h" form, the same form ParseRect reads.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X1, r.Y1, r.Width(), r.Height())
}

// Crop is an ffmpeg crop: origin plus size.
type Crop struct {
	X, Y          int
	Width, Height int
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// Step is one branch of the filter graph: crop the source, then scale.
type Step struct {
	Crop  Crop
	Scale Size
}

// Plan is the full compositing recipe. Webcam is stacked above Gameplay.
type Plan struct {
	Webcam   Step
	Gameplay Step
}

// NewPlan derives crops by subtraction and assigns the fixed band sizes. It
// does not validate regions against the source frame.
func NewPlan(webcam, gameplay Region) Plan {
	return Plan{
		Webcam: Step{
			Crop:  webcam.Crop(),
			Scale: Size{Width: CanvasWidth, Height: WebcamHeight},
		},
		Gameplay: Step{
			Crop:  gameplay.Crop(),
			Scale: Size{Width: CanvasWidth, Height: GameplayHeight},
		},
	}
}

// Canvas returns the size of the stacked output.
func (p Plan) Canvas() Size {
	return Size{
		Width:  p.Webcam.Scale.Width,
		Height: p.Webcam.Scale.Height + p.Gameplay.Scale.Height,
	}
}

// ParseRect parses "x,y,w,h" (commas and/or whitespace as separators) into a
// Region. Negative sizes are rejected; "0,0,0,0" parses to the zero Region.
func ParseRect(value string) (Region, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(value), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 4 {
		return Region{}, fmt.Errorf("rectangle %q: expected x,y,w,h", value)
	}
	var nums [4]int
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return Region{}, fmt.Errorf("rectangle %q: %w", value, err)
		}
		nums[i] = n
	}
	if nums[0] < 0 || nums[1] < 0 {
		return Region{}, fmt.Errorf("rectangle %q: origin must not be negative", value)
	}
	if nums[2] < 0 || nums[3] < 0 {
		return Region{}, fmt.Errorf("rectangle %q: size must not be negative", value)
	}
	return RegionFromRect(nums[0], nums[1], nums[2], nums[3]), nil
}
