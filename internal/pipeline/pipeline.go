package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipforge/internal/config"
	"clipforge/internal/download"
	"clipforge/internal/fileutil"
	"clipforge/internal/history"
	"clipforge/internal/layout"
	"clipforge/internal/logging"
	"clipforge/internal/preflight"
	"clipforge/internal/selection"
	"clipforge/internal/services"
	"clipforge/internal/textutil"
	"clipforge/internal/twitch"
)

// Deps holds the collaborators of a Pipeline. Source, Downloader and Composer
// are required. A nil Captioner disables captions; a nil Selector falls back
// to the picker command or the terminal prompt.
type Deps struct {
	Source     ClipSource
	Downloader Downloader
	Selector   selection.Selector
	Composer   Composer
	Captioner  Captioner
	Prober     Prober
	History    Recorder

	// Stdin and Prompt back the terminal selector.
	Stdin  io.Reader
	Prompt io.Writer

	// Preflight defaults to preflight.RunAll.
	Preflight func(ctx context.Context, cfg *config.Config) []preflight.Result
	Now       func() time.Time
	NewRunID  func() string
}

// Pipeline runs the clip-to-short workflow.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps
}

// New validates deps and returns a Pipeline.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "config is nil", nil)
	}
	if deps.Source == nil || deps.Downloader == nil || deps.Composer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "clip source, downloader and composer are required", nil)
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Prompt == nil {
		deps.Prompt = os.Stderr
	}
	if deps.Preflight == nil {
		deps.Preflight = preflight.RunAll
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		deps:   deps,
	}, nil
}

// run carries the state of a single Run call.
type run struct {
	req           Request
	result        Result
	logger        *slog.Logger
	intermediates []string
	started       time.Time
}

func (r *run) track(path string) {
	r.intermediates = append(r.intermediates, path)
}

// Run executes one request. Expected endings are returned as a Result with a
// nil error; stage failures return the partial Result and the error.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	req.Channel = strings.TrimSpace(req.Channel)
	if req.Channel == "" {
		return Result{}, services.Wrap(services.ErrValidation, "pipeline", "run", "channel is required", nil)
	}
	if req.Mode == "" {
		req.Mode = p.cfg.Twitch.Mode
	}
	if req.Count <= 0 {
		req.Count = p.cfg.Twitch.ClipCount
	}

	if err := p.cfg.EnsureDirectories(); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "", err)
	}

	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("lock work directory: %w", err)
	}
	if !locked {
		return Result{}, services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("another clipforge run is using %s", p.cfg.Paths.WorkDir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	r := &run{req: req, started: p.deps.Now()}
	r.result.RunID = p.deps.NewRunID()
	ctx = services.WithRunID(ctx, r.result.RunID)
	ctx = services.WithChannel(ctx, req.Channel)

	runLogger, closer, err := logging.OpenRunLog(p.logger, p.cfg.Paths.LogDir, r.result.RunID)
	if err != nil {
		logging.WarnWithContext(p.logger, "run log unavailable", "run_log_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is only logged to the main log"),
		)
		runLogger, closer = p.logger, io.NopCloser(strings.NewReader(""))
	}
	defer closer.Close()
	r.logger = logging.WithContext(ctx, runLogger)
	if pruned := logging.PruneRunLogs(r.logger, p.cfg.Paths.LogDir, p.cfg.Logging.RetentionDays, r.started); pruned > 0 {
		r.logger.Debug("pruned old run logs", logging.Int("removed", pruned))
	}

	r.logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", req.Mode),
		logging.Int("count", req.Count),
	)

	err = p.execute(ctx, r)
	p.cleanup(r)
	r.result.Duration = p.deps.Now().Sub(r.started)
	p.record(ctx, r, err)

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		r.logger.Info("run interrupted", logging.String(logging.FieldEventType, "run_interrupted"))
	case err != nil:
		logging.ErrorWithContext(r.logger, "run failed", "run_failed",
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.Error(err),
		)
	default:
		r.logger.Info("run finished",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("status", string(r.result.Status)),
			logging.String("output", r.result.OutputPath),
			logging.Bool("captioned", r.result.Captioned),
			logging.Duration("duration", r.result.Duration),
		)
	}
	return r.result, err
}

func (p *Pipeline) execute(ctx context.Context, r *run) error {
	if failed := preflight.Failures(p.deps.Preflight(ctx, p.cfg)); len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "pipeline", "preflight", preflight.Summarize(failed), nil)
	}

	var clips []twitch.Clip
	if err := p.stage(ctx, r, StageClips, func(ctx context.Context) error {
		var err error
		clips, err = p.listClips(ctx, r)
		return err
	}); err != nil {
		return err
	}
	r.result.Candidates = len(clips)
	if len(clips) == 0 {
		r.logger.Info("channel has no clips in range", logging.String("mode", r.req.Mode))
		r.result.Status = StatusNoClips
		return nil
	}

	var source string
	err := p.stage(ctx, r, StageDownload, func(ctx context.Context) error {
		path, clip, err := p.deps.Downloader.FirstAvailable(ctx, clips)
		if err != nil {
			return err
		}
		source = path
		r.result.Clip = clip
		return nil
	})
	if errors.Is(err, download.ErrAllProcessed) {
		r.logger.Info("every candidate already produced a short")
		r.result.Status = StatusNoClips
		return nil
	}
	if err != nil {
		return err
	}
	r.track(source)
	ctx = services.WithClipID(ctx, r.result.Clip.ID)
	r.logger = r.logger.With(logging.String(logging.FieldClipID, r.result.Clip.ID))
	p.logSource(ctx, r, source)

	var picked selection.Selection
	if err := p.stage(ctx, r, StageSelect, func(ctx context.Context) error {
		selector, err := p.selector(r.req)
		if err != nil {
			return err
		}
		picked, err = selector.Select(ctx, source)
		return err
	}); err != nil {
		return err
	}
	if picked.Cancelled {
		r.logger.Info("region selection cancelled", logging.String(logging.FieldEventType, "selection_cancelled"))
		r.result.Status = StatusCancelled
		return nil
	}

	token := textutil.SanitizeToken(r.result.Clip.ID)
	vertical := filepath.Join(p.cfg.Paths.WorkDir, "vertical_"+token+".mp4")
	r.track(vertical)
	if err := p.stage(ctx, r, StageCompose, func(ctx context.Context) error {
		plan := layout.NewPlan(picked.Webcam, picked.Gameplay)
		r.logger.Info("layout planned",
			logging.String("webcam", picked.Webcam.String()),
			logging.String("gameplay", picked.Gameplay.String()),
		)
		return p.deps.Composer.Compose(ctx, plan, source, vertical)
	}); err != nil {
		return err
	}

	finished := vertical
	if p.deps.Captioner != nil && !r.req.NoCaptions {
		captioned := filepath.Join(p.cfg.Paths.WorkDir, "captioned_"+token+".mp4")
		r.track(captioned)
		if err := p.stage(ctx, r, StageCaptions, func(ctx context.Context) error {
			res, err := p.deps.Captioner.Caption(ctx, vertical, captioned)
			if err != nil {
				return err
			}
			finished = res.VideoPath
			r.result.Captioned = res.Captioned
			r.result.CaptionSkipReason = res.SkipReason
			return nil
		}); err != nil {
			return err
		}
	} else {
		r.result.CaptionSkipReason = "captions disabled"
	}

	output := filepath.Join(p.cfg.Paths.OutputDir, textutil.ClipFileName(r.result.Clip.Title, r.result.Clip.ID))
	if err := p.stage(ctx, r, StagePublish, func(context.Context) error {
		if err := fileutil.MoveFile(finished, output); err != nil {
			return services.Wrap(services.ErrTransient, "pipeline", "publish", "", err)
		}
		return nil
	}); err != nil {
		return err
	}
	r.result.OutputPath = output
	r.result.Status = StatusCompleted
	return nil
}

func (p *Pipeline) listClips(ctx context.Context, r *run) ([]twitch.Clip, error) {
	if err := p.deps.Source.Authenticate(ctx); err != nil {
		return nil, err
	}
	broadcasterID, err := p.deps.Source.BroadcasterID(ctx, r.req.Channel)
	if err != nil {
		return nil, err
	}
	clips, err := p.deps.Source.Clips(ctx, broadcasterID, twitch.ClipQuery{
		Mode:  r.req.Mode,
		First: r.req.Count,
		Now:   p.deps.Now(),
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("clips listed",
		logging.String("broadcaster_id", broadcasterID),
		logging.Int("clips", len(clips)),
	)
	return clips, nil
}

// logSource records the downloaded clip's properties; probe failures are
// not fatal.
func (p *Pipeline) logSource(ctx context.Context, r *run, path string) {
	if p.deps.Prober == nil {
		return
	}
	probe, err := p.deps.Prober.Inspect(ctx, path)
	if err != nil {
		r.logger.Debug("source probe failed", logging.Error(err))
		return
	}
	width, height := probe.Dimensions()
	r.logger.Info("source clip",
		logging.String("title", r.result.Clip.Title),
		logging.String("resolution", fmt.Sprintf("%dx%d", width, height)),
		logging.Float64("duration_seconds", probe.DurationSeconds()),
		logging.Bool("audio", probe.HasAudio()),
		logging.Bytes("size", probe.SizeBytes()),
	)
}

func (p *Pipeline) selector(req Request) (selection.Selector, error) {
	if req.PresetRegions || !req.Webcam.IsZero() || !req.Gameplay.IsZero() {
		return selection.Preset{Webcam: req.Webcam, Gameplay: req.Gameplay}, nil
	}
	if p.deps.Selector != nil {
		return p.deps.Selector, nil
	}
	picker := req.PickerCommand
	if picker == "" {
		picker = p.cfg.Tools.PickerCommand
	}
	if strings.TrimSpace(picker) != "" {
		return selection.NewCommand(picker, p.cfg.Tools.FFmpegBinary, p.cfg.Paths.WorkDir)
	}
	return selection.NewPrompt(p.cfg.Tools.FFmpegBinary, p.cfg.Paths.WorkDir, p.deps.Prober, p.deps.Stdin, p.deps.Prompt), nil
}

// stage runs fn with the stage recorded in the context and logs its
// boundaries.
func (p *Pipeline) stage(ctx context.Context, r *run, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := r.logger.With(logging.String(logging.FieldStage, name))
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()
	if err := fn(stageCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return nil
}

// cleanup removes intermediates best effort. Failures are logged only.
func (p *Pipeline) cleanup(r *run) {
	if p.cfg.Pipeline.KeepIntermediates {
		if len(r.intermediates) > 0 {
			r.logger.Info("keeping intermediates", logging.Any("paths", r.intermediates))
		}
		return
	}
	for _, path := range r.intermediates {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logging.WarnWithContext(r.logger, "intermediate cleanup failed", "cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left in work directory"),
			)
		}
	}
}

func (p *Pipeline) record(ctx context.Context, r *run, runErr error) {
	if p.deps.History == nil {
		return
	}
	entry := history.Run{
		RunID:             r.result.RunID,
		Channel:           r.req.Channel,
		Mode:              r.req.Mode,
		ClipID:            r.result.Clip.ID,
		ClipTitle:         r.result.Clip.Title,
		ClipURL:           r.result.Clip.URL,
		OutputPath:        r.result.OutputPath,
		Captioned:         r.result.Captioned,
		CaptionSkipReason: r.result.CaptionSkipReason,
		StartedAt:         r.started,
		FinishedAt:        r.started.Add(r.result.Duration),
	}
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		entry.Status = history.StatusCancelled
		entry.ErrorMessage = "interrupted"
	case runErr != nil:
		entry.Status = history.StatusFailed
		entry.ErrorKind = services.Kind(runErr)
		entry.ErrorMessage = runErr.Error()
	default:
		entry.Status = history.Status(r.result.Status)
	}
	if err := p.deps.History.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(r.logger, "run history not recorded", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from clipforge history"),
		)
	}
}

func errorHint(err error) string {
	switch services.Kind(err) {
	case "authentication":
		return "check twitch.client_id and twitch.client_secret"
	case "configuration":
		return "run clipforge config show and clipforge doctor"
	case "external_tool":
		return "run clipforge doctor to verify external tools"
	case "timeout":
		return "raise download.timeout or retry later"
	default:
		return "check the run log for details"
	}
}
