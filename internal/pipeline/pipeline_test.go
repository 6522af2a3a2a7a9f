package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/captions"
	"clipforge/internal/config"
	"clipforge/internal/download"
	"clipforge/internal/history"
	"clipforge/internal/layout"
	"clipforge/internal/preflight"
	"clipforge/internal/selection"
	"clipforge/internal/services"
	"clipforge/internal/testsupport"
	"clipforge/internal/twitch"
)

type fakeSource struct {
	clips    []twitch.Clip
	authErr  error
	query    twitch.ClipQuery
	loginErr error
}

func (f *fakeSource) Authenticate(context.Context) error { return f.authErr }

func (f *fakeSource) BroadcasterID(_ context.Context, login string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "id-" + login, nil
}

func (f *fakeSource) Clips(_ context.Context, _ string, query twitch.ClipQuery) ([]twitch.Clip, error) {
	f.query = query
	return f.clips, nil
}

type fakeDownloader struct {
	workDir string
	err     error
}

func (f *fakeDownloader) FirstAvailable(_ context.Context, clips []twitch.Clip) (string, twitch.Clip, error) {
	if f.err != nil {
		return "", twitch.Clip{}, f.err
	}
	path := filepath.Join(f.workDir, "downloaded_clip_"+clips[0].ID+".mp4")
	if err := os.WriteFile(path, []byte("source"), 0o644); err != nil {
		return "", twitch.Clip{}, err
	}
	return path, clips[0], nil
}

type fakeComposer struct {
	plan layout.Plan
	err  error
}

func (f *fakeComposer) Compose(_ context.Context, plan layout.Plan, _, output string) error {
	f.plan = plan
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(output, []byte("vertical"), 0o644)
}

type fakeCaptioner struct {
	skip string
}

func (f *fakeCaptioner) Caption(_ context.Context, videoPath, outputPath string) (captions.Result, error) {
	if f.skip != "" {
		return captions.Result{VideoPath: videoPath, SkipReason: f.skip}, nil
	}
	if err := os.WriteFile(outputPath, []byte("captioned"), 0o644); err != nil {
		return captions.Result{}, err
	}
	return captions.Result{VideoPath: outputPath, Captioned: true, Cues: 3}, nil
}

type fakeRecorder struct {
	runs []history.Run
}

func (f *fakeRecorder) Record(_ context.Context, run history.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

type fixture struct {
	cfg        *config.Config
	source     *fakeSource
	downloader *fakeDownloader
	composer   *fakeComposer
	captioner  *fakeCaptioner
	recorder   *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &fixture{
		cfg: cfg,
		source: &fakeSource{clips: []twitch.Clip{
			{ID: "Clip1", Title: "Huge Play!", URL: "https://clips.twitch.tv/Clip1", ViewCount: 50},
		}},
		downloader: &fakeDownloader{workDir: cfg.Paths.WorkDir},
		composer:   &fakeComposer{},
		captioner:  &fakeCaptioner{},
		recorder:   &fakeRecorder{},
	}
}

func (f *fixture) pipeline(t *testing.T, selector selection.Selector) *Pipeline {
	t.Helper()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	p, err := New(f.cfg, nil, Deps{
		Source:     f.source,
		Downloader: f.downloader,
		Selector:   selector,
		Composer:   f.composer,
		Captioner:  f.captioner,
		History:    f.recorder,
		Preflight:  func(context.Context, *config.Config) []preflight.Result { return nil },
		Now:        func() time.Time { return now },
		NewRunID:   func() string { return "run-1" },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func workEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Name() == ".clipforge.lock" {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

var webcam = layout.RegionFromRect(0, 0, 480, 270)
var gameplay = layout.RegionFromRect(0, 270, 1920, 810)

func TestRunCompletesWithCaptions(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	result, err := p.Run(context.Background(), Request{Channel: "streamer", Webcam: webcam, Gameplay: gameplay})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != StatusCompleted || !result.Captioned || result.RunID != "run-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	want := filepath.Join(f.cfg.Paths.OutputDir, "Huge Play!_Clip1.mp4")
	if result.OutputPath != want {
		t.Fatalf("output path = %q, want %q", result.OutputPath, want)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "captioned" {
		t.Fatalf("expected captioned output, got %q err=%v", data, err)
	}
	if f.composer.plan.Webcam.Crop != webcam.Crop() {
		t.Fatalf("unexpected plan: %+v", f.composer.plan)
	}
	if f.source.query.Mode != twitch.ModeRecent || f.source.query.First != 5 {
		t.Fatalf("expected config defaults in query, got %+v", f.source.query)
	}
	if left := workEntries(t, f.cfg.Paths.WorkDir); len(left) != 0 {
		t.Fatalf("expected intermediates removed, found %v", left)
	}
	if len(f.recorder.runs) != 1 || f.recorder.runs[0].Status != history.StatusCompleted || !f.recorder.runs[0].Captioned {
		t.Fatalf("unexpected history: %+v", f.recorder.runs)
	}
}

func TestRunPublishesUncaptionedOnSkip(t *testing.T) {
	f := newFixture(t)
	f.captioner.skip = captions.SkipNoWords
	p := f.pipeline(t, nil)

	result, err := p.Run(context.Background(), Request{Channel: "streamer", Webcam: webcam, Gameplay: gameplay})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Captioned || result.CaptionSkipReason != captions.SkipNoWords {
		t.Fatalf("unexpected caption outcome: %+v", result)
	}
	data, err := os.ReadFile(result.OutputPath)
	if err != nil || string(data) != "vertical" {
		t.Fatalf("expected composed video published, got %q err=%v", data, err)
	}
}

func TestRunNoCaptionsFlag(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)
	result, err := p.Run(context.Background(), Request{Channel: "streamer", Webcam: webcam, Gameplay: gameplay, NoCaptions: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Captioned || result.CaptionSkipReason != "captions disabled" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunNoClips(t *testing.T) {
	f := newFixture(t)
	f.source.clips = nil
	p := f.pipeline(t, nil)

	result, err := p.Run(context.Background(), Request{Channel: "quiet", Mode: twitch.ModeTop, Count: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != StatusNoClips {
		t.Fatalf("expected no clips, got %+v", result)
	}
	if f.source.query.Mode != twitch.ModeTop || f.source.query.First != 3 {
		t.Fatalf("request overrides not applied: %+v", f.source.query)
	}
	if f.recorder.runs[0].Status != history.StatusNoClips {
		t.Fatalf("unexpected history status %q", f.recorder.runs[0].Status)
	}
}

func TestRunAllProcessedIsNoClips(t *testing.T) {
	f := newFixture(t)
	f.downloader.err = download.ErrAllProcessed
	result, err := f.pipeline(t, nil).Run(context.Background(), Request{Channel: "streamer"})
	if err != nil || result.Status != StatusNoClips {
		t.Fatalf("expected no clips, got %+v err=%v", result, err)
	}
}

func TestRunCancelledSelection(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, selection.Preset{})

	result, err := p.Run(context.Background(), Request{Channel: "streamer"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %+v", result)
	}
	if left := workEntries(t, f.cfg.Paths.WorkDir); len(left) != 0 {
		t.Fatalf("expected download removed after cancel, found %v", left)
	}
	if f.recorder.runs[0].Status != history.StatusCancelled {
		t.Fatalf("unexpected history status %q", f.recorder.runs[0].Status)
	}
}

// refusingSelector fails the test when interactive selection is reached.
type refusingSelector struct{ t *testing.T }

func (s refusingSelector) Select(context.Context, string) (selection.Selection, error) {
	s.t.Fatal("interactive selector used despite preset regions")
	return selection.Selection{}, nil
}

func TestRunZeroPresetRegionCancels(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"zero webcam", Request{Channel: "streamer", Webcam: layout.Region{}, Gameplay: gameplay, PresetRegions: true}},
		{"both zero", Request{Channel: "streamer", PresetRegions: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.pipeline(t, refusingSelector{t: t})

			result, err := p.Run(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.Status != StatusCancelled {
				t.Fatalf("expected cancelled, got %+v", result)
			}
			if f.composer.plan != (layout.Plan{}) {
				t.Fatalf("compose should not run, got plan %+v", f.composer.plan)
			}
		})
	}
}

func TestRunComposeFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.composer.err = services.Wrap(services.ErrExternalTool, "compose", "ffmpeg", "", errors.New("Invalid too big or non positive size"))
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), Request{Channel: "streamer", Webcam: webcam, Gameplay: gameplay})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if left := workEntries(t, f.cfg.Paths.WorkDir); len(left) != 0 {
		t.Fatalf("expected intermediates removed on failure, found %v", left)
	}
	run := f.recorder.runs[0]
	if run.Status != history.StatusFailed || run.ErrorKind != "external_tool" || run.ClipID != "Clip1" {
		t.Fatalf("unexpected history: %+v", run)
	}
}

func TestRunKeepIntermediates(t *testing.T) {
	f := newFixture(t)
	f.cfg.Pipeline.KeepIntermediates = true
	f.captioner.skip = captions.SkipTranscriptionFailed
	p := f.pipeline(t, nil)

	if _, err := p.Run(context.Background(), Request{Channel: "streamer", Webcam: webcam, Gameplay: gameplay}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	left := workEntries(t, f.cfg.Paths.WorkDir)
	if len(left) != 1 || left[0] != "downloaded_clip_Clip1.mp4" {
		t.Fatalf("expected download kept, found %v", left)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("authentication", func(t *testing.T) {
		f := newFixture(t)
		f.source.authErr = services.Wrap(services.ErrAuthentication, "twitch", "authenticate", "", nil)
		_, err := f.pipeline(t, nil).Run(context.Background(), Request{Channel: "x"})
		if !errors.Is(err, services.ErrAuthentication) {
			t.Fatalf("expected authentication error, got %v", err)
		}
	})
	t.Run("unknown channel", func(t *testing.T) {
		f := newFixture(t)
		f.source.loginErr = services.Wrap(services.ErrNotFound, "twitch", "lookup user", "", nil)
		_, err := f.pipeline(t, nil).Run(context.Background(), Request{Channel: "ghost"})
		if !errors.Is(err, services.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
	t.Run("empty channel", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.pipeline(t, nil).Run(context.Background(), Request{Channel: "  "})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
	t.Run("preflight", func(t *testing.T) {
		f := newFixture(t)
		p := f.pipeline(t, nil)
		p.deps.Preflight = func(context.Context, *config.Config) []preflight.Result {
			return []preflight.Result{{Name: "Twitch credentials", Detail: "missing"}}
		}
		_, err := p.Run(context.Background(), Request{Channel: "x"})
		if !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
	t.Run("interrupted", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		f.downloader.err = context.Canceled
		cancel()
		_, err := f.pipeline(t, nil).Run(ctx, Request{Channel: "x"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if f.recorder.runs[0].Status != history.StatusCancelled {
			t.Fatalf("unexpected history status %q", f.recorder.runs[0].Status)
		}
	})
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	f := newFixture(t)
	held := flock.New(f.cfg.LockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	_, err = f.pipeline(t, nil).Run(context.Background(), Request{Channel: "streamer"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected lock validation error, got %v", err)
	}
}

func TestNewFromConfigWiresCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.SkipProcessed = true
	store := testsupport.MustOpenHistory(t, cfg)

	p, err := NewFromConfig(cfg, nil, store)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if p.deps.Captioner == nil || p.deps.History == nil || p.deps.Prober == nil {
		t.Fatalf("expected captioner, history and prober wired: %+v", p.deps)
	}
	downloader, ok := p.deps.Downloader.(*download.Downloader)
	if !ok || downloader.Skip == nil {
		t.Fatalf("expected history-backed skip predicate, got %T", p.deps.Downloader)
	}

	cfg.Twitch.ClientSecret = ""
	if _, err := NewFromConfig(cfg, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without credentials, got %v", err)
	}
}
