package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the final outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusNoClips   Status = "no_clips"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run is one recorded pipeline run.
type Run struct {
	RunID             string
	Channel           string
	Mode              string
	ClipID            string
	ClipTitle         string
	ClipURL           string
	Status            Status
	OutputPath        string
	Captioned         bool
	CaptionSkipReason string
	ErrorKind         string
	ErrorMessage      string
	StartedAt         time.Time
	FinishedAt        time.Time
}

// Duration returns the wall time of the run, or zero when unfinished.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout keeps a fixed-width fraction so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "run_id, channel, mode, clip_id, clip_title, clip_url, status, output_path, captioned, caption_skip_reason, error_kind, error_message, started_at, finished_at"

// Record inserts run, replacing any earlier row with the same run id.
func (s *Store) Record(ctx context.Context, run Run) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("history: run id is required")
	}
	if run.Status == "" {
		return errors.New("history: status is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	query := "INSERT OR REPLACE INTO runs (" + runColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			run.RunID,
			run.Channel,
			nullString(run.Mode),
			nullString(run.ClipID),
			nullString(run.ClipTitle),
			nullString(run.ClipURL),
			string(run.Status),
			nullString(run.OutputPath),
			boolToInt(run.Captioned),
			nullString(run.CaptionSkipReason),
			nullString(run.ErrorKind),
			nullString(run.ErrorMessage),
			formatTime(run.StartedAt),
			nullString(formatTime(run.FinishedAt)),
		)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		return nil
	})
}

// Processed reports whether clipID already completed in an earlier run.
func (s *Store) Processed(ctx context.Context, clipID string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM runs WHERE clip_id = ? AND status = ?",
			clipID, string(StatusCompleted),
		).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("query processed clip: %w", err)
	}
	return count > 0, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := retryOnBusy(ctx, func() error {
		runs = runs[:0]
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		status      string
		mode        sql.NullString
		clipID      sql.NullString
		clipTitle   sql.NullString
		clipURL     sql.NullString
		outputPath  sql.NullString
		captioned   sql.NullInt64
		skipReason  sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.RunID,
		&run.Channel,
		&mode,
		&clipID,
		&clipTitle,
		&clipURL,
		&status,
		&outputPath,
		&captioned,
		&skipReason,
		&errorKind,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, err
	}
	run.Mode = mode.String
	run.ClipID = clipID.String
	run.ClipTitle = clipTitle.String
	run.ClipURL = clipURL.String
	run.Status = Status(status)
	run.OutputPath = outputPath.String
	run.Captioned = captioned.Valid && captioned.Int64 != 0
	run.CaptionSkipReason = skipReason.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw.String)
	return run, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
