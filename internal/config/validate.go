package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
//
// Twitch credentials are not required here so that offline commands such as
// doctor and config show work without them; the Twitch client validates them
// before the first request.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTwitch(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.work_dir")
	}
	return nil
}

func (c *Config) validateTwitch() error {
	switch c.Twitch.Mode {
	case "recent", "top":
	default:
		return fmt.Errorf("twitch.mode must be \"recent\" or \"top\", got %q", c.Twitch.Mode)
	}
	if c.Twitch.ClipCount < 1 || c.Twitch.ClipCount > 100 {
		return errors.New("twitch.clip_count must be between 1 and 100")
	}
	return ensurePositiveMap(map[string]int{
		"twitch.request_timeout": c.Twitch.RequestTimeout,
	})
}

func (c *Config) validateDownload() error {
	switch c.Download.Method {
	case "yt-dlp", "direct":
	default:
		return fmt.Errorf("download.method must be \"yt-dlp\" or \"direct\", got %q", c.Download.Method)
	}
	return ensurePositiveMap(map[string]int{
		"download.timeout": c.Download.Timeout,
	})
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Engine {
	case "whisperx":
	case "openai":
		if c.Captions.Enabled && c.Transcription.OpenAIAPIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/clipforge/config.toml"
			}
			return fmt.Errorf("transcription.openai_api_key is required for the openai engine. Set OPENAI_API_KEY or edit %s", defaultPath)
		}
	default:
		return fmt.Errorf("transcription.engine must be \"whisperx\" or \"openai\", got %q", c.Transcription.Engine)
	}
	return ensurePositiveMap(map[string]int{
		"transcription.openai_timeout": c.Transcription.OpenAITimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", strings.TrimSpace(key))
		}
	}
	return nil
}
