package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/textutil"
	"clipforge/internal/twitch"
)

var (
	// ErrNoDownload is returned when no candidate could be fetched. It is
	// joined with every per-candidate error.
	ErrNoDownload = errors.New("no clip could be downloaded")
	// ErrAllProcessed is returned when every candidate was skipped.
	ErrAllProcessed = errors.New("every candidate clip was already processed")
)

// Fetcher retrieves a clip's media into dest.
type Fetcher interface {
	Fetch(ctx context.Context, clip twitch.Clip, dest string) error
}

// SkipFunc reports whether a candidate should not be downloaded.
type SkipFunc func(ctx context.Context, clip twitch.Clip) bool

// Downloader tries candidates in order until one downloads.
type Downloader struct {
	fetcher Fetcher
	workDir string
	timeout time.Duration
	logger  *slog.Logger

	// Skip filters candidates before fetching (history lookups).
	Skip SkipFunc
}

// NewDownloader returns a Downloader writing into workDir. A non-positive
// timeout disables the per-candidate deadline.
func NewDownloader(fetcher Fetcher, workDir string, timeout time.Duration, logger *slog.Logger) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		workDir: workDir,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "download"),
	}
}

// Path returns the destination for a clip inside the work directory.
func (d *Downloader) Path(clip twitch.Clip) string {
	return filepath.Join(d.workDir, "downloaded_clip_"+textutil.SanitizeToken(clip.ID)+".mp4")
}

// FirstAvailable downloads the first candidate that succeeds and returns its
// path and clip.
func (d *Downloader) FirstAvailable(ctx context.Context, clips []twitch.Clip) (string, twitch.Clip, error) {
	logger := logging.WithContext(ctx, d.logger)
	var errs []error
	skipped := 0
	for idx, clip := range clips {
		if err := ctx.Err(); err != nil {
			return "", twitch.Clip{}, err
		}
		if d.Skip != nil && d.Skip(ctx, clip) {
			skipped++
			logger.Info("candidate already processed, skipping",
				logging.String(logging.FieldClipID, clip.ID),
				logging.String("title", clip.Title),
			)
			continue
		}

		dest := d.Path(clip)
		logger.Info("downloading candidate",
			logging.String(logging.FieldClipID, clip.ID),
			logging.Int("candidate", idx+1),
			logging.Int("candidates", len(clips)),
			logging.Int("views", clip.ViewCount),
			logging.String("title", clip.Title),
		)
		err := d.fetchOne(ctx, clip, dest)
		if err == nil {
			if info, statErr := os.Stat(dest); statErr == nil {
				logger.Info("candidate downloaded",
					logging.String(logging.FieldClipID, clip.ID),
					logging.Bytes("size", info.Size()),
				)
			}
			return dest, clip, nil
		}
		if ctx.Err() != nil {
			d.removePartial(logger, dest)
			return "", twitch.Clip{}, ctx.Err()
		}

		logging.WarnWithContext(logger, "candidate download failed", "download_failed",
			logging.String(logging.FieldClipID, clip.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "trying the next candidate"),
		)
		d.removePartial(logger, dest)
		errs = append(errs, fmt.Errorf("clip %s: %w", clip.ID, err))
	}
	if len(errs) == 0 && skipped > 0 {
		return "", twitch.Clip{}, ErrAllProcessed
	}
	return "", twitch.Clip{}, errors.Join(append([]error{ErrNoDownload}, errs...)...)
}

func (d *Downloader) fetchOne(ctx context.Context, clip twitch.Clip, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure work dir: %w", err)
	}
	fetchCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	err := d.fetcher.Fetch(fetchCtx, clip, dest)
	if err != nil && ctx.Err() == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "download", "fetch", fmt.Sprintf("exceeded %v", d.timeout), err)
	}
	if err != nil {
		return err
	}
	info, statErr := os.Stat(dest)
	if statErr != nil {
		return services.Wrap(services.ErrExternalTool, "download", "fetch", "no output file", statErr)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "download", "fetch", "output file is empty", nil)
	}
	return nil
}

func (d *Downloader) removePartial(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove partial download",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cleanup_failed"),
		)
	}
}
