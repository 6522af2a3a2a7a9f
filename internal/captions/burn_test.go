package captions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipforge/internal/services"
)

func TestFFmpegBurnerArgs(t *testing.T) {
	b := NewFFmpegBurner("", "h264_nvenc", "/usr/share/fonts/impact")
	args := b.Args("/work/vertical_x.mp4", "/work/subs_x.ass", "/out/final.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{"-i /work/vertical_x.mp4", "subtitles", "/work/subs_x.ass", "fontsdir", "h264_nvenc", "-c:a copy", "/out/final.mp4", "-y"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %v", want, args)
		}
	}
}

func TestFFmpegBurnerEscapesFilterPaths(t *testing.T) {
	b := NewFFmpegBurner("ffmpeg", "libx264", "/fonts:x")
	args := b.Args("in.mp4", "/work dir/a,b;c[d]/it's:x.ass", "out.mp4")

	var graph string
	for i, arg := range args {
		if arg == "-filter_complex" && i+1 < len(args) {
			graph = args[i+1]
		}
	}
	if graph == "" {
		t.Fatalf("no filter graph in %v", args)
	}
	wantFile := `filename=/work dir/a\,b\;c\[d\]/it\\\'s\\:x.ass`
	if !strings.Contains(graph, wantFile) {
		t.Fatalf("subtitle path not escaped for the filter graph:\n got %s\nwant substring %s", graph, wantFile)
	}
	if !strings.Contains(graph, `fontsdir=/fonts\\:x`) {
		t.Fatalf("fonts dir not escaped: %s", graph)
	}
}

func TestFFmpegBurnerOmitsEmptyFontsDir(t *testing.T) {
	args := NewFFmpegBurner("ffmpeg", "", "").Args("in.mp4", "subs.ass", "out.mp4")
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "fontsdir") {
		t.Fatalf("fontsdir should be omitted: %v", args)
	}
	if !strings.Contains(joined, "libx264") {
		t.Fatalf("expected default codec: %v", args)
	}
}

func TestFFmpegBurnerWrapsFailure(t *testing.T) {
	var gotName string
	runner := func(_ context.Context, name string, _ ...string) error {
		gotName = name
		return errors.New("exit status 1: No such filter: 'subtitles'")
	}
	b := NewFFmpegBurner("/opt/ffmpeg", "libx264", "", WithCommandRunner(runner))

	err := b.Burn(context.Background(), "in.mp4", "subs.ass", "out.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "No such filter") {
		t.Fatalf("ffmpeg diagnostics lost: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("configured binary not used: %q", gotName)
	}
}
