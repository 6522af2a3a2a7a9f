package transcribe

import (
	"context"
	"path/filepath"
	"strings"

	"clipforge/internal/services"
)

// audioExtractor writes a mono 16 kHz PCM WAV copy of the first audio track.
type audioExtractor struct {
	ffmpegBinary string
	run          services.CommandRunner
}

func (a audioExtractor) extract(ctx context.Context, source, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := a.run(ctx, a.ffmpegBinary, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "transcribe", "extract audio", filepath.Base(source), err)
	}
	return nil
}

// audioPath returns the scratch WAV path for source inside workDir.
func audioPath(workDir, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(workDir, "audio_"+base+".wav")
}
