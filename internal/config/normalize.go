package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTwitch()
	c.normalizeDownload()
	c.normalizeTools()
	c.normalizeEncoding()
	c.normalizeTranscription()
	if err := c.normalizeCaptions(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTwitch() {
	c.Twitch.ClientID = strings.TrimSpace(c.Twitch.ClientID)
	if c.Twitch.ClientID == "" {
		c.Twitch.ClientID = envValue("TWITCH_CLIENT_ID")
	}
	c.Twitch.ClientSecret = strings.TrimSpace(c.Twitch.ClientSecret)
	if c.Twitch.ClientSecret == "" {
		c.Twitch.ClientSecret = envValue("TWITCH_CLIENT_SECRET")
	}
	c.Twitch.AuthURL = strings.TrimSpace(c.Twitch.AuthURL)
	if c.Twitch.AuthURL == "" {
		c.Twitch.AuthURL = defaultTwitchAuthURL
	}
	c.Twitch.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Twitch.APIBaseURL), "/")
	if c.Twitch.APIBaseURL == "" {
		c.Twitch.APIBaseURL = defaultTwitchAPIBaseURL
	}
	c.Twitch.Mode = strings.ToLower(strings.TrimSpace(c.Twitch.Mode))
	if c.Twitch.Mode == "" {
		c.Twitch.Mode = defaultClipMode
	}
	if c.Twitch.ClipCount == 0 {
		c.Twitch.ClipCount = defaultClipCount
	}
	if c.Twitch.RequestTimeout == 0 {
		c.Twitch.RequestTimeout = defaultTwitchTimeout
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Method = strings.ToLower(strings.TrimSpace(c.Download.Method))
	switch c.Download.Method {
	case "", "ytdlp", "yt_dlp":
		c.Download.Method = defaultDownloadMethod
	}
	c.Download.YTDLPBinary = strings.TrimSpace(c.Download.YTDLPBinary)
	if c.Download.YTDLPBinary == "" {
		c.Download.YTDLPBinary = defaultYTDLPBinary
	}
	c.Download.Format = strings.TrimSpace(c.Download.Format)
	if c.Download.Format == "" {
		c.Download.Format = defaultYTDLPFormat
	}
	if c.Download.Timeout == 0 {
		c.Download.Timeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpegBinary = strings.TrimSpace(c.Tools.FFmpegBinary)
	if c.Tools.FFmpegBinary == "" {
		c.Tools.FFmpegBinary = defaultFFmpegBinary
	}
	c.Tools.FFprobeBinary = strings.TrimSpace(c.Tools.FFprobeBinary)
	if c.Tools.FFprobeBinary == "" {
		c.Tools.FFprobeBinary = defaultFFprobeBinary
	}
	c.Tools.UVXBinary = strings.TrimSpace(c.Tools.UVXBinary)
	if c.Tools.UVXBinary == "" {
		c.Tools.UVXBinary = defaultUVXBinary
	}
	c.Tools.PickerCommand = strings.TrimSpace(c.Tools.PickerCommand)
}

func (c *Config) normalizeEncoding() {
	c.Encoding.VideoCodec = strings.TrimSpace(c.Encoding.VideoCodec)
	if c.Encoding.VideoCodec == "" {
		c.Encoding.VideoCodec = defaultVideoCodec
	}
	c.Encoding.AudioCodec = strings.TrimSpace(c.Encoding.AudioCodec)
	if c.Encoding.AudioCodec == "" {
		c.Encoding.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Engine = strings.ToLower(strings.TrimSpace(t.Engine))
	if t.Engine == "" {
		t.Engine = defaultEngine
	}
	t.Language = strings.ToLower(strings.TrimSpace(t.Language))
	if t.Language == "" {
		t.Language = defaultLanguage
	}
	t.WhisperXModel = strings.TrimSpace(t.WhisperXModel)
	if t.WhisperXModel == "" {
		t.WhisperXModel = defaultWhisperXModel
	}
	t.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(t.WhisperXVADMethod))
	if t.WhisperXVADMethod == "" {
		t.WhisperXVADMethod = defaultWhisperXVAD
	}
	t.WhisperXHuggingFace = strings.TrimSpace(t.WhisperXHuggingFace)
	if t.WhisperXHuggingFace == "" {
		if value := envValue("HUGGING_FACE_HUB_TOKEN"); value != "" {
			t.WhisperXHuggingFace = value
		} else {
			t.WhisperXHuggingFace = envValue("HF_TOKEN")
		}
	}
	t.OpenAIAPIKey = strings.TrimSpace(t.OpenAIAPIKey)
	if t.OpenAIAPIKey == "" {
		t.OpenAIAPIKey = envValue("OPENAI_API_KEY")
	}
	t.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(t.OpenAIBaseURL), "/")
	if t.OpenAIBaseURL == "" {
		t.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	t.OpenAIModel = strings.TrimSpace(t.OpenAIModel)
	if t.OpenAIModel == "" {
		t.OpenAIModel = defaultOpenAIModel
	}
	if t.OpenAITimeout == 0 {
		t.OpenAITimeout = defaultOpenAITimeout
	}
}

func (c *Config) normalizeCaptions() error {
	if strings.TrimSpace(c.Captions.FontsDir) == "" {
		c.Captions.FontsDir = ""
		return nil
	}
	var err error
	if c.Captions.FontsDir, err = expandPath(c.Captions.FontsDir); err != nil {
		return fmt.Errorf("captions.fonts_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func envValue(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
