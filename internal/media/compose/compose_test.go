package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipforge/internal/layout"
	"clipforge/internal/services"
)

func samplePlan() layout.Plan {
	return layout.NewPlan(
		layout.Region{X1: 1500, Y1: 700, X2: 1900, Y2: 1000},
		layout.Region{X1: 420, Y1: 0, X2: 1500, Y2: 1080},
	)
}

func TestArgsBuildStackedGraph(t *testing.T) {
	args := New("", "", "").Args(samplePlan(), "/work/downloaded_clip_abc.mp4", "/work/vertical_abc.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /work/downloaded_clip_abc.mp4",
		"-filter_complex",
		"crop",
		"scale",
		"vstack",
		"inputs",
		"1080",
		"840",
		"-c:v libx264",
		"-c:a copy",
		"/work/vertical_abc.mp4",
		"-y",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %v", want, args)
		}
	}
}

func TestComposeRunsConfiguredBinary(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	c := New("/opt/ffmpeg", "h264_nvenc", "", WithCommandRunner(runner))
	if err := c.Compose(context.Background(), samplePlan(), "in.mp4", "out.mp4"); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "h264_nvenc") {
		t.Fatalf("codec not applied: %v", gotArgs)
	}
}

func TestComposeFailureCarriesDiagnostics(t *testing.T) {
	runner := func(context.Context, string, ...string) error {
		return errors.New("exit status 1: Invalid too big or non positive size for width '0'")
	}
	err := New("", "", "", WithCommandRunner(runner)).Compose(context.Background(), samplePlan(), "in.mp4", "out.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "non positive size") {
		t.Fatalf("diagnostics lost: %v", err)
	}
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := func(context.Context, string, ...string) error { return errors.New("signal: killed") }
	err := New("", "", "", WithCommandRunner(runner)).Compose(ctx, samplePlan(), "in.mp4", "out.mp4")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
