package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"clipforge/internal/history"
	"clipforge/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []history.Run{
		{RunID: "r1", Channel: "alpha", ClipID: "c1", Status: history.StatusCompleted, Captioned: true,
			OutputPath: "/out/a.mp4", StartedAt: base, FinishedAt: base.Add(90 * time.Second)},
		{RunID: "r2", Channel: "alpha", Status: history.StatusNoClips, StartedAt: base.Add(time.Minute)},
		{RunID: "r3", Channel: "beta", ClipID: "c9", Status: history.StatusFailed, ErrorKind: "external_tool",
			ErrorMessage: "ffmpeg exploded", StartedAt: base.Add(2*time.Minute + 500*time.Millisecond)},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %s: %v", run.RunID, err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(recent))
	}
	if recent[0].RunID != "r3" || recent[2].RunID != "r1" {
		t.Fatalf("expected newest first, got %s..%s", recent[0].RunID, recent[2].RunID)
	}
	first := recent[2]
	if !first.Captioned || first.OutputPath != "/out/a.mp4" || first.Duration() != 90*time.Second {
		t.Fatalf("unexpected round trip: %+v", first)
	}
	if recent[0].ErrorKind != "external_tool" || recent[0].ErrorMessage != "ffmpeg exploded" {
		t.Fatalf("unexpected error fields: %+v", recent[0])
	}
	if !recent[1].FinishedAt.IsZero() {
		t.Fatalf("expected unfinished run to have zero FinishedAt, got %v", recent[1].FinishedAt)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one run with limit, got %d err=%v", len(limited), err)
	}
}

func TestProcessedOnlyCountsCompletedRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if err := store.Record(ctx, history.Run{RunID: "a", Channel: "x", ClipID: "failed-clip", Status: history.StatusFailed}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, history.Run{RunID: "b", Channel: "x", ClipID: "done-clip", Status: history.StatusCompleted}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	for clipID, want := range map[string]bool{"failed-clip": false, "done-clip": true, "unknown": false} {
		got, err := store.Processed(ctx, clipID)
		if err != nil {
			t.Fatalf("Processed(%s): %v", clipID, err)
		}
		if got != want {
			t.Fatalf("Processed(%s) = %v, want %v", clipID, got, want)
		}
	}
}

func TestRecordValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Record(context.Background(), history.Run{Status: history.StatusCompleted}); err == nil {
		t.Fatal("expected error without run id")
	}
	if err := store.Record(context.Background(), history.Run{RunID: "x"}); err == nil {
		t.Fatal("expected error without status")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), history.Run{RunID: "keep", Channel: "x", Status: history.StatusCancelled}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	runs, err := reopened.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusCancelled {
		t.Fatalf("unexpected runs after reopen: %+v", runs)
	}
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := history.OpenPath(path)
	if err == nil {
		store.Close()
		t.Fatal("expected schema mismatch")
	}
	if !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
