package pipeline

import (
	"context"
	"time"

	"clipforge/internal/captions"
	"clipforge/internal/history"
	"clipforge/internal/layout"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/twitch"
)

// Status is the outcome of a run that did not fail.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusNoClips   Status = "no_clips"
	StatusCancelled Status = "cancelled"
)

// Stage names used in logs and the context.
const (
	StageClips    = "clips"
	StageDownload = "download"
	StageSelect   = "select"
	StageCompose  = "compose"
	StageCaptions = "captions"
	StagePublish  = "publish"
)

// Request describes one run.
type Request struct {
	Channel string
	// Mode is twitch.ModeRecent or twitch.ModeTop; empty uses the config.
	Mode string
	// Count limits the candidate clips; zero uses the config.
	Count int
	// Webcam and Gameplay skip interactive selection when PresetRegions is
	// set or either region is non-zero. A zero region cancels the run.
	Webcam        layout.Region
	Gameplay      layout.Region
	PresetRegions bool
	// PickerCommand overrides tools.picker_command.
	PickerCommand string
	NoCaptions    bool
}

// Result summarizes a run.
type Result struct {
	RunID             string
	Status            Status
	Clip              twitch.Clip
	Candidates        int
	OutputPath        string
	Captioned         bool
	CaptionSkipReason string
	Duration          time.Duration
}

// ClipSource lists clips for a channel.
type ClipSource interface {
	Authenticate(ctx context.Context) error
	BroadcasterID(ctx context.Context, login string) (string, error)
	Clips(ctx context.Context, broadcasterID string, query twitch.ClipQuery) ([]twitch.Clip, error)
}

// Downloader fetches the first available candidate.
type Downloader interface {
	FirstAvailable(ctx context.Context, clips []twitch.Clip) (string, twitch.Clip, error)
}

// Composer renders the stacked vertical video.
type Composer interface {
	Compose(ctx context.Context, plan layout.Plan, input, output string) error
}

// Captioner burns captions, reporting skips through captions.Result.
type Captioner interface {
	Caption(ctx context.Context, videoPath, outputPath string) (captions.Result, error)
}

// Prober inspects media files.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Recorder persists run outcomes.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}
