package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
		{Name: "Blank", Command: " "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[3].Detail)
	}

	missing := MissingRequired(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Blank" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	names := func() map[string]bool {
		out := map[string]bool{}
		for _, req := range Requirements(&cfg) {
			out[req.Name] = true
		}
		return out
	}

	got := names()
	for _, want := range []string{"FFmpeg", "FFprobe", "yt-dlp", "uvx"} {
		if !got[want] {
			t.Fatalf("expected %s in default requirements: %v", want, got)
		}
	}

	cfg.Download.Method = "direct"
	cfg.Captions.Enabled = false
	cfg.Tools.PickerCommand = "my-picker --flag"
	got = names()
	if got["yt-dlp"] || got["uvx"] {
		t.Fatalf("unexpected requirements: %v", got)
	}
	if !got["Region picker"] {
		t.Fatalf("expected picker requirement: %v", got)
	}
}

func TestCheckFFmpegFilters(t *testing.T) {
	listing := []byte(`Filters:
  T.. = Timeline support
 ... crop              V->V       Crop the input video.
 ... scale             V->V       Scale the input video size and/or convert the image format.
 ... vstack            N->V       Stack video inputs vertically.
`)
	run := func(context.Context, string, ...string) ([]byte, error) { return listing, nil }

	status := CheckFFmpegFilters(context.Background(), "ffmpeg", run, "crop", "scale", "vstack")
	if !status.Available {
		t.Fatalf("expected filters available, got %#v", status)
	}
	status = CheckFFmpegFilters(context.Background(), "ffmpeg", run, "crop", "subtitles")
	if status.Available || status.Detail != "missing filters: subtitles" {
		t.Fatalf("expected missing subtitles, got %#v", status)
	}

	failing := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("boom") }
	if status := CheckFFmpegFilters(context.Background(), "ffmpeg", failing, "crop"); status.Available {
		t.Fatal("expected failure when ffmpeg cannot run")
	}
}

func TestFFmpegVersion(t *testing.T) {
	run := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("ffmpeg version 7.1 Copyright (c) 2000-2024\nbuilt with gcc\n"), nil
	}
	version, err := FFmpegVersion(context.Background(), "ffmpeg", run)
	if err != nil {
		t.Fatalf("FFmpegVersion: %v", err)
	}
	if version != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version %q", version)
	}
}
