package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"clipforge/internal/captions"
	"clipforge/internal/language"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// WhisperX runtime constants.
const (
	DefaultWhisperXModel = "large-v3"
	CUDAIndexURL         = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL         = "https://pypi.org/simple"
	whisperXBatchSize    = "4"
	whisperXChunkSize    = "15"
	whisperXVADOnset     = "0.08"
	whisperXVADOffset    = "0.07"
	whisperXBeamSize     = "10"
	whisperXBestOf       = "10"
	whisperXTemperature  = "0.0"
	VADMethodPyannote    = "pyannote"
	VADMethodSilero      = "silero"
)

// WhisperXConfig captures runtime settings for the WhisperX engine.
type WhisperXConfig struct {
	UVXBinary    string
	FFmpegBinary string
	WorkDir      string
	Model        string
	CUDAEnabled  bool
	// VADMethod selects voice activity detection ("silero" or "pyannote").
	VADMethod string
	// HFToken is required by pyannote VAD.
	HFToken string
}

// WhisperX transcribes through a uvx-managed WhisperX install.
type WhisperX struct {
	cfg    WhisperXConfig
	audio  audioExtractor
	run    services.CommandRunner
	logger *slog.Logger
}

// NewWhisperX returns a WhisperX engine.
func NewWhisperX(cfg WhisperXConfig, logger *slog.Logger) *WhisperX {
	if cfg.UVXBinary == "" {
		cfg.UVXBinary = "uvx"
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultWhisperXModel
	}
	if cfg.VADMethod == "" {
		cfg.VADMethod = VADMethodSilero
	}
	return &WhisperX{
		cfg:    cfg,
		audio:  audioExtractor{ffmpegBinary: cfg.FFmpegBinary, run: services.RunCommand},
		run:    runWhisperX,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
}

// WithCommandRunner replaces process execution for both ffmpeg and uvx
// (for testing).
func (w *WhisperX) WithCommandRunner(runner services.CommandRunner) *WhisperX {
	if runner != nil {
		w.run = runner
		w.audio.run = runner
	}
	return w
}

// Transcribe extracts the audio of mediaPath and returns WhisperX word
// timings. Words WhisperX could not align keep nil boundaries.
func (w *WhisperX) Transcribe(ctx context.Context, mediaPath, lang string) ([]captions.WordSpan, error) {
	workDir := w.cfg.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(mediaPath)
	}
	wav := audioPath(workDir, mediaPath)
	outputDir := strings.TrimSuffix(wav, ".wav") + "_whisperx"
	defer func() {
		_ = os.Remove(wav)
		_ = os.RemoveAll(outputDir)
	}()

	if err := w.audio.extract(ctx, mediaPath, wav); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("whisperx: ensure output dir: %w", err)
	}

	logger := logging.WithContext(ctx, w.logger)
	logger.Info("whisperx transcription started",
		logging.String("model", w.cfg.Model),
		logging.Bool("cuda", w.cfg.CUDAEnabled),
		logging.String("vad", w.cfg.VADMethod),
	)
	if err := w.run(ctx, w.cfg.UVXBinary, w.buildArgs(wav, outputDir, lang)...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "", err)
	}

	jsonPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(wav), ".wav")+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "read output", err)
	}
	return ParseWhisperXWords(data)
}

func (w *WhisperX) buildArgs(source, outputDir, lang string) []string {
	args := make([]string, 0, 40)
	if w.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", w.cfg.Model,
		"--batch_size", whisperXBatchSize,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--chunk_size", whisperXChunkSize,
		"--vad_onset", whisperXVADOnset,
		"--vad_offset", whisperXVADOffset,
		"--beam_size", whisperXBeamSize,
		"--best_of", whisperXBestOf,
		"--temperature", whisperXTemperature,
		"--vad_method", w.cfg.VADMethod,
	)
	if w.cfg.VADMethod == VADMethodPyannote && w.cfg.HFToken != "" {
		args = append(args, "--hf_token", w.cfg.HFToken)
	}
	if iso := language.ToISO2(lang); iso != "" {
		args = append(args, "--language", iso)
	}
	if w.cfg.CUDAEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "float32")
	}
	return args
}

// ParseWhisperXWords flattens segments[].words[] from WhisperX JSON output.
func ParseWhisperXWords(data []byte) ([]captions.WordSpan, error) {
	if !gjson.ValidBytes(data) {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "output is not valid JSON", nil)
	}
	var spans []captions.WordSpan
	gjson.GetBytes(data, "segments").ForEach(func(_, segment gjson.Result) bool {
		segment.Get("words").ForEach(func(_, word gjson.Result) bool {
			spans = append(spans, wordSpan(word, "word"))
			return true
		})
		return true
	})
	return spans, nil
}

// wordSpan converts a {<textKey>, start, end} object. Absent or null
// boundaries stay nil.
func wordSpan(word gjson.Result, textKey string) captions.WordSpan {
	span := captions.WordSpan{Text: strings.TrimSpace(word.Get(textKey).String())}
	if v := word.Get("start"); v.Type == gjson.Number {
		start := v.Float()
		span.Start = &start
	}
	if v := word.Get("end"); v.Type == gjson.Number {
		end := v.Float()
		span.End = &end
	}
	return span
}

// runWhisperX runs uvx with the torch weights-only load disabled, which
// WhisperX/pyannote checkpoints still require.
func runWhisperX(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w: %s", name, err, services.Diagnostic(output))
}
