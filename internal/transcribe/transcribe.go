package transcribe

import (
	"fmt"
	"log/slog"
	"time"

	"clipforge/internal/captions"
	"clipforge/internal/config"
	"clipforge/internal/services"
)

// Engine names accepted by transcription.engine.
const (
	EngineWhisperX = "whisperx"
	EngineOpenAI   = "openai"
)

// New returns the transcriber configured in cfg. Scratch files are written
// to cfg.Paths.WorkDir and removed after each call.
func New(cfg *config.Config, logger *slog.Logger) (captions.Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new", "config is nil", nil)
	}
	t := cfg.Transcription
	switch t.Engine {
	case EngineWhisperX, "":
		return NewWhisperX(WhisperXConfig{
			UVXBinary:    cfg.Tools.UVXBinary,
			FFmpegBinary: cfg.Tools.FFmpegBinary,
			WorkDir:      cfg.Paths.WorkDir,
			Model:        t.WhisperXModel,
			CUDAEnabled:  t.WhisperXCUDAEnabled,
			VADMethod:    t.WhisperXVADMethod,
			HFToken:      t.WhisperXHuggingFace,
		}, logger), nil
	case EngineOpenAI:
		engine, err := NewOpenAI(OpenAIConfig{
			APIKey:       t.OpenAIAPIKey,
			BaseURL:      t.OpenAIBaseURL,
			Model:        t.OpenAIModel,
			Timeout:      time.Duration(t.OpenAITimeout) * time.Second,
			FFmpegBinary: cfg.Tools.FFmpegBinary,
			WorkDir:      cfg.Paths.WorkDir,
		}, logger)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new", fmt.Sprintf("unknown engine %q", t.Engine), nil)
	}
}
