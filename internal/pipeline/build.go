package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"clipforge/internal/captions"
	"clipforge/internal/config"
	"clipforge/internal/download"
	"clipforge/internal/history"
	"clipforge/internal/logging"
	"clipforge/internal/media/compose"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/transcribe"
	"clipforge/internal/twitch"
)

// NewTwitchClient builds the Helix client described by cfg.
func NewTwitchClient(cfg *config.Config) (*twitch.Client, error) {
	return twitch.New(
		twitch.Credentials{ClientID: cfg.Twitch.ClientID, ClientSecret: cfg.Twitch.ClientSecret},
		twitch.WithAuthURL(cfg.Twitch.AuthURL),
		twitch.WithAPIBaseURL(cfg.Twitch.APIBaseURL),
		twitch.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Twitch.RequestTimeout) * time.Second}),
	)
}

// NewFetcher returns the fetcher selected by download.method.
func NewFetcher(cfg *config.Config, logger *slog.Logger) download.Fetcher {
	if cfg.Download.Method == "direct" {
		return download.NewDirect(time.Duration(cfg.Download.Timeout)*time.Second, logger)
	}
	return download.NewYTDLP(cfg.Download.YTDLPBinary, cfg.Download.Format)
}

// DepsOption adjusts the collaborators built by NewFromConfig.
type DepsOption func(*Deps)

// WithTerminal sets the reader and writer used by the prompt selector.
func WithTerminal(in io.Reader, out io.Writer) DepsOption {
	return func(d *Deps) {
		d.Stdin = in
		d.Prompt = out
	}
}

// NewFromConfig wires production collaborators. store may be nil, which
// disables history and processed-clip skipping.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, store *history.Store, opts ...DepsOption) (*Pipeline, error) {
	source, err := NewTwitchClient(cfg)
	if err != nil {
		return nil, err
	}

	downloader := download.NewDownloader(NewFetcher(cfg, logger), cfg.Paths.WorkDir,
		time.Duration(cfg.Download.Timeout)*time.Second, logger)
	deps := Deps{
		Source:     source,
		Downloader: downloader,
		Composer:   compose.New(cfg.Tools.FFmpegBinary, cfg.Encoding.VideoCodec, cfg.Encoding.AudioCodec),
		Prober:     ffprobe.New(cfg.Tools.FFprobeBinary),
	}

	if store != nil {
		deps.History = store
		if cfg.Pipeline.SkipProcessed {
			downloader.Skip = processedSkipper(store, logger)
		}
	}

	if cfg.Captions.Enabled {
		transcriber, err := transcribe.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		burner := captions.NewFFmpegBurner(cfg.Tools.FFmpegBinary, cfg.Encoding.VideoCodec, cfg.Captions.FontsDir)
		deps.Captioner = captions.NewCaptioner(transcriber, burner, cfg.Paths.WorkDir, cfg.Transcription.Language, logger)
	}

	for _, opt := range opts {
		opt(&deps)
	}
	return New(cfg, logger, deps)
}

// processedSkipper skips clips already published. Lookup errors never skip.
func processedSkipper(store *history.Store, logger *slog.Logger) download.SkipFunc {
	return func(ctx context.Context, clip twitch.Clip) bool {
		done, err := store.Processed(ctx, clip.ID)
		if err != nil {
			logging.WithContext(ctx, logger).Warn("history lookup failed",
				logging.String(logging.FieldClipID, clip.ID),
				logging.Error(err),
			)
			return false
		}
		return done
	}
}
