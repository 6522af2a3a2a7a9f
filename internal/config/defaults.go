package config

const (
	defaultWorkDir          = "~/.local/share/clipforge/work"
	defaultOutputDir        = "~/Videos/clipforge"
	defaultLogDir           = "~/.local/share/clipforge/logs"
	defaultStateDir         = "~/.local/share/clipforge/state"
	defaultTwitchAuthURL    = "https://id.twitch.tv/oauth2/token"
	defaultTwitchAPIBaseURL = "https://api.twitch.tv/helix"
	defaultClipCount        = 5
	defaultClipMode         = "recent"
	defaultTwitchTimeout    = 15
	defaultDownloadMethod   = "yt-dlp"
	defaultYTDLPBinary      = "yt-dlp"
	defaultYTDLPFormat      = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultDownloadTimeout  = 300
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultUVXBinary        = "uvx"
	defaultVideoCodec       = "libx264"
	defaultAudioCodec       = "copy"
	defaultEngine           = "whisperx"
	defaultLanguage         = "en"
	defaultWhisperXModel    = "large-v3"
	defaultWhisperXVAD      = "silero"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOpenAIModel      = "whisper-1"
	defaultOpenAITimeout    = 120
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Twitch: Twitch{
			AuthURL:        defaultTwitchAuthURL,
			APIBaseURL:     defaultTwitchAPIBaseURL,
			ClipCount:      defaultClipCount,
			Mode:           defaultClipMode,
			RequestTimeout: defaultTwitchTimeout,
		},
		Download: Download{
			Method:      defaultDownloadMethod,
			YTDLPBinary: defaultYTDLPBinary,
			Format:      defaultYTDLPFormat,
			Timeout:     defaultDownloadTimeout,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			UVXBinary:     defaultUVXBinary,
		},
		Encoding: Encoding{
			VideoCodec: defaultVideoCodec,
			AudioCodec: defaultAudioCodec,
		},
		Transcription: Transcription{
			Engine:            defaultEngine,
			Language:          defaultLanguage,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVAD,
			OpenAIBaseURL:     defaultOpenAIBaseURL,
			OpenAIModel:       defaultOpenAIModel,
			OpenAITimeout:     defaultOpenAITimeout,
		},
		Captions: Captions{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
