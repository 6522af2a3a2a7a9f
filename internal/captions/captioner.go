package captions

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Transcriber produces word spans for the audio track of a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, language string) ([]WordSpan, error)
}

// Burner renders a subtitle file onto a video.
type Burner interface {
	Burn(ctx context.Context, videoPath, subtitlePath, outputPath string) error
}

// Skip reasons reported in Result.SkipReason.
const (
	SkipTranscriptionFailed = "transcription failed"
	SkipNoWords             = "no words transcribed"
	SkipNoTimedWords        = "no words with timings"
)

// Result describes the outcome of a captioning attempt. When Captioned is
// false, VideoPath is the untouched input and SkipReason says why.
type Result struct {
	VideoPath  string
	Captioned  bool
	SkipReason string
	Cues       int
}

// Captioner runs transcription, cue building and burn-in for one video.
type Captioner struct {
	transcriber Transcriber
	burner      Burner
	workDir     string
	language    string
	logger      *slog.Logger
}

// NewCaptioner wires a captioner. Temporary subtitle files are written to
// workDir.
func NewCaptioner(transcriber Transcriber, burner Burner, workDir, language string, logger *slog.Logger) *Captioner {
	return &Captioner{
		transcriber: transcriber,
		burner:      burner,
		workDir:     workDir,
		language:    language,
		logger:      logging.NewComponentLogger(logger, "captions"),
	}
}

// Caption burns captions for videoPath into outputPath. Transcription
// failures and empty transcripts are reported as skips; only burn-in failures
// and cancellation are errors.
func (c *Captioner) Caption(ctx context.Context, videoPath, outputPath string) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	skip := Result{VideoPath: videoPath}

	spans, err := c.transcriber.Transcribe(ctx, videoPath, c.language)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logging.WarnWithContext(logger, "transcription failed; captions skipped", "transcription_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the transcription engine configuration"),
			logging.String(logging.FieldImpact, "short is published without captions"),
		)
		skip.SkipReason = SkipTranscriptionFailed
		return skip, nil
	}
	if len(spans) == 0 {
		logger.Info("no words transcribed; captions skipped", logging.String(logging.FieldEventType, "captions_skipped"))
		skip.SkipReason = SkipNoWords
		return skip, nil
	}

	cues := CollectCues(spans)
	if len(cues) == 0 {
		logger.Info("no words carried timings; captions skipped",
			logging.Int("words", len(spans)),
			logging.String(logging.FieldEventType, "captions_skipped"),
		)
		skip.SkipReason = SkipNoTimedWords
		return skip, nil
	}

	subtitlePath := filepath.Join(c.workDir, "subs_"+strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))+".ass")
	defer func() {
		if err := os.Remove(subtitlePath); err != nil && !os.IsNotExist(err) {
			logging.WarnWithContext(logger, "subtitle file cleanup failed", "cleanup_failed",
				logging.String("path", subtitlePath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "temporary file left in work directory"),
			)
		}
	}()

	if err := WriteASSFile(subtitlePath, cues); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "captions", "write subtitles", "", err)
	}
	logger.Debug("subtitle file written", logging.String("path", subtitlePath), logging.Int("cues", len(cues)))

	if err := c.burner.Burn(ctx, videoPath, subtitlePath, outputPath); err != nil {
		return Result{}, fmt.Errorf("caption %s: %w", filepath.Base(videoPath), err)
	}
	logger.Info("captions burned",
		logging.Int("cues", len(cues)),
		logging.Int("words", len(spans)),
		logging.String("output", outputPath),
	)
	return Result{VideoPath: outputPath, Captioned: true, Cues: len(cues)}, nil
}
