package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"clipforge/internal/captions"
	"clipforge/internal/language"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

const (
	DefaultOpenAIModel   = "whisper-1"
	DefaultOpenAITimeout = 120 * time.Second
)

// OpenAIConfig captures settings for the hosted transcription engine.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	FFmpegBinary string
	WorkDir      string
	HTTPClient   *http.Client
}

// OpenAI transcribes through the OpenAI audio transcription endpoint.
type OpenAI struct {
	client  openai.Client
	model   string
	workDir string
	audio   audioExtractor
	logger  *slog.Logger
}

// NewOpenAI returns an OpenAI engine. An API key is required.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "openai", "api key is required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOpenAITimeout
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		workDir: cfg.WorkDir,
		audio:   audioExtractor{ffmpegBinary: cfg.FFmpegBinary, run: services.RunCommand},
		logger:  logging.NewComponentLogger(logger, "openai-transcribe"),
	}, nil
}

// WithCommandRunner replaces ffmpeg execution (for testing).
func (o *OpenAI) WithCommandRunner(runner services.CommandRunner) *OpenAI {
	if runner != nil {
		o.audio.run = runner
	}
	return o
}

// Transcribe uploads the extracted audio of mediaPath and returns word timings.
func (o *OpenAI) Transcribe(ctx context.Context, mediaPath, lang string) ([]captions.WordSpan, error) {
	workDir := o.workDir
	if workDir == "" {
		workDir = filepath.Dir(mediaPath)
	}
	wav := audioPath(workDir, mediaPath)
	defer func() { _ = os.Remove(wav) }()

	if err := o.audio.extract(ctx, mediaPath, wav); err != nil {
		return nil, err
	}
	file, err := os.Open(wav)
	if err != nil {
		return nil, fmt.Errorf("openai: open audio: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(o.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if iso := language.ToISO2(lang); iso != "" {
		params.Language = openai.String(iso)
	}

	logger := logging.WithContext(ctx, o.logger)
	logger.Info("openai transcription started", logging.String("model", o.model))

	var raw json.RawMessage
	if _, err := o.client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&raw)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyOpenAIError(err)
	}
	return ParseOpenAIWords(raw)
}

// ParseOpenAIWords reads words[] from a verbose_json transcription response.
func ParseOpenAIWords(data []byte) ([]captions.WordSpan, error) {
	if !gjson.ValidBytes(data) {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "openai", "response is not valid JSON", nil)
	}
	var spans []captions.WordSpan
	gjson.GetBytes(data, "words").ForEach(func(_, word gjson.Result) bool {
		spans = append(spans, wordSpan(word, "word"))
		return true
	})
	return spans, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrAuthentication, "transcribe", "openai", "", err)
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500:
			return services.Wrap(services.ErrTransient, "transcribe", "openai", "", err)
		}
	}
	return services.Wrap(services.ErrExternalTool, "transcribe", "openai", "", err)
}
