package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"clipforge/internal/services"
	"clipforge/internal/twitch"
)

// scriptedFetcher writes partial output, then fails for ids listed in fail.
type scriptedFetcher struct {
	fail  map[string]bool
	calls []string
}

func (f *scriptedFetcher) Fetch(_ context.Context, clip twitch.Clip, dest string) error {
	f.calls = append(f.calls, clip.ID)
	if err := os.WriteFile(dest, []byte("partial"), 0o644); err != nil {
		return err
	}
	if f.fail[clip.ID] {
		return errors.New("HTTP Error 404")
	}
	return nil
}

func TestFirstAvailableSkipsFailedCandidates(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &scriptedFetcher{fail: map[string]bool{"a": true}}
	d := NewDownloader(fetcher, workDir, 0, nil)

	path, clip, err := d.FirstAvailable(context.Background(), []twitch.Clip{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	if err != nil {
		t.Fatalf("FirstAvailable: %v", err)
	}
	if clip.ID != "b" {
		t.Fatalf("expected clip b, got %q", clip.ID)
	}
	if path != filepath.Join(workDir, "downloaded_clip_b.mp4") {
		t.Fatalf("unexpected path %q", path)
	}
	if !slices.Equal(fetcher.calls, []string{"a", "b"}) {
		t.Fatalf("unexpected fetch order: %v", fetcher.calls)
	}
	if _, err := os.Stat(filepath.Join(workDir, "downloaded_clip_a.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected partial file for a to be removed, stat err=%v", err)
	}
}

func TestFirstAvailableAllFail(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &scriptedFetcher{fail: map[string]bool{"a": true, "b": true}}
	d := NewDownloader(fetcher, workDir, 0, nil)

	_, _, err := d.FirstAvailable(context.Background(), []twitch.Clip{{ID: "a"}, {ID: "b"}})
	if !errors.Is(err, ErrNoDownload) {
		t.Fatalf("expected ErrNoDownload, got %v", err)
	}
	if !strings.Contains(err.Error(), "clip a") || !strings.Contains(err.Error(), "clip b") {
		t.Fatalf("expected every candidate error, got %v", err)
	}
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, found %d", len(entries))
	}
}

func TestFirstAvailableSkipPredicate(t *testing.T) {
	fetcher := &scriptedFetcher{}
	d := NewDownloader(fetcher, t.TempDir(), 0, nil)
	d.Skip = func(_ context.Context, clip twitch.Clip) bool { return clip.ID == "a" }

	_, clip, err := d.FirstAvailable(context.Background(), []twitch.Clip{{ID: "a"}, {ID: "b"}})
	if err != nil || clip.ID != "b" {
		t.Fatalf("expected clip b, got %q err=%v", clip.ID, err)
	}

	d.Skip = func(context.Context, twitch.Clip) bool { return true }
	_, _, err = d.FirstAvailable(context.Background(), []twitch.Clip{{ID: "a"}})
	if !errors.Is(err, ErrAllProcessed) {
		t.Fatalf("expected ErrAllProcessed, got %v", err)
	}
}

func TestFirstAvailableStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDownloader(&scriptedFetcher{}, t.TempDir(), 0, nil)
	if _, _, err := d.FirstAvailable(ctx, []twitch.Clip{{ID: "a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestYTDLPFetch(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	y := NewYTDLP("", "", WithYTDLPRunner(runner))
	clip := twitch.Clip{ID: "x", URL: "https://clips.twitch.tv/x"}
	if err := y.Fetch(context.Background(), clip, "/work/downloaded_clip_x.mp4"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotName != "yt-dlp" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	if gotArgs[0] != "-f" || gotArgs[1] != DefaultFormat {
		t.Fatalf("unexpected format args: %v", gotArgs)
	}
	for _, want := range []string{"--no-playlist", "--quiet", "--merge-output-format"} {
		if !slices.Contains(gotArgs, want) {
			t.Fatalf("missing %s in %v", want, gotArgs)
		}
	}
	if gotArgs[len(gotArgs)-1] != clip.URL {
		t.Fatalf("expected url last, got %v", gotArgs)
	}

	failing := NewYTDLP("yt-dlp", "", WithYTDLPRunner(func(context.Context, string, ...string) error {
		return errors.New("ERROR: Unsupported URL")
	}))
	if err := failing.Fetch(context.Background(), clip, "/tmp/x.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestMediaURL(t *testing.T) {
	got, err := MediaURL(twitch.Clip{ThumbnailURL: "https://clips-media-assets2.twitch.tv/AT-cm%7C123-preview-480x272.jpg"})
	if err != nil {
		t.Fatalf("MediaURL: %v", err)
	}
	if got != "https://clips-media-assets2.twitch.tv/AT-cm%7C123.mp4" {
		t.Fatalf("unexpected media url %q", got)
	}
	if _, err := MediaURL(twitch.Clip{ThumbnailURL: "https://static/clip.jpg"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDirectFetch(t *testing.T) {
	payload := bytes.Repeat([]byte("v"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clip123.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	var bar bytes.Buffer
	d := NewDirect(0, nil, WithDirectHTTPClient(server.Client()), WithProgressWriter(&bar))
	dest := filepath.Join(t.TempDir(), "out.mp4")
	clip := twitch.Clip{ID: "clip123", ThumbnailURL: server.URL + "/clip123-preview-480x272.jpg"}
	if err := d.Fetch(context.Background(), clip, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("downloaded %d bytes, want %d", len(data), len(payload))
	}

	missing := twitch.Clip{ID: "gone", ThumbnailURL: server.URL + "/gone-preview-480x272.jpg"}
	d = NewDirect(0, nil, WithDirectHTTPClient(server.Client()), WithProgressWriter(nil))
	if err := d.Fetch(context.Background(), missing, dest); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
