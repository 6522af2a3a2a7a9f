package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/twitch"
)

// Direct streams the MP4 that sits next to the clip thumbnail on the clips
// CDN. Twitch has moved most clips off this layout, so YTDLP is the default.
type Direct struct {
	httpClient *http.Client
	progress   io.Writer
	logger     *slog.Logger
}

// DirectOption configures a Direct fetcher.
type DirectOption func(*Direct)

// WithDirectHTTPClient overrides the HTTP client.
func WithDirectHTTPClient(client *http.Client) DirectOption {
	return func(d *Direct) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithProgressWriter forces a progress bar onto w. Nil disables the bar and
// falls back to sampled log lines.
func WithProgressWriter(w io.Writer) DirectOption {
	return func(d *Direct) {
		d.progress = w
	}
}

// NewDirect returns a direct fetcher. A progress bar is drawn on stderr when
// it is a terminal.
func NewDirect(timeout time.Duration, logger *slog.Logger, opts ...DirectOption) *Direct {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	d := &Direct{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "download"),
	}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		d.progress = os.Stderr
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MediaURL derives the MP4 URL from a clip thumbnail URL by cutting at
// "-preview" and appending ".mp4".
func MediaURL(clip twitch.Clip) (string, error) {
	thumb := strings.TrimSpace(clip.ThumbnailURL)
	idx := strings.Index(thumb, "-preview")
	if idx <= 0 {
		return "", services.Wrap(services.ErrValidation, "download", "direct",
			fmt.Sprintf("thumbnail url %q has no -preview marker", thumb), nil)
	}
	return thumb[:idx] + ".mp4", nil
}

// Fetch streams the clip MP4 into dest.
func (d *Direct) Fetch(ctx context.Context, clip twitch.Clip, dest string) error {
	mediaURL, err := MediaURL(clip)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrTransient, "download", "direct", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, "download", "direct",
			fmt.Sprintf("media url returned %d", resp.StatusCode), nil)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var sink io.Writer
	if d.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(clip.ID),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		sink = io.MultiWriter(file, bar)
	} else {
		sink = io.MultiWriter(file, &sampledProgress{
			logger:  logging.WithContext(ctx, d.logger).With(logging.String(logging.FieldClipID, clip.ID)),
			total:   resp.ContentLength,
			sampler: logging.NewProgressSampler(25),
		})
	}

	_, copyErr := io.Copy(sink, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrTransient, "download", "direct", "stream interrupted", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", dest, closeErr)
	}
	return nil
}

// sampledProgress logs download progress at sampler boundaries.
type sampledProgress struct {
	logger  *slog.Logger
	total   int64
	done    int64
	sampler *logging.ProgressSampler
}

func (p *sampledProgress) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.total > 0 && p.sampler.ShouldLog(p.done, p.total) {
		p.logger.Info("download progress",
			logging.Bytes("downloaded", p.done),
			logging.Bytes("total", p.total),
		)
	}
	return len(b), nil
}
