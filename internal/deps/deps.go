package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"clipforge/internal/config"
)

// Requirement defines an external binary clipforge drives.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured pipeline will execute.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpegBinary, Description: "Required for compositing and caption burn-in"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobeBinary, Description: "Required for media inspection"},
	}
	if cfg.Download.Method == "yt-dlp" {
		reqs = append(reqs, Requirement{
			Name:        "yt-dlp",
			Command:     cfg.Download.YTDLPBinary,
			Description: "Required for clip downloads",
		})
	}
	if cfg.Captions.Enabled && cfg.Transcription.Engine == "whisperx" {
		reqs = append(reqs, Requirement{
			Name:        "uvx",
			Command:     cfg.Tools.UVXBinary,
			Description: "Required for WhisperX transcription",
		})
	}
	if picker := strings.Fields(cfg.Tools.PickerCommand); len(picker) > 0 {
		reqs = append(reqs, Requirement{
			Name:        "Region picker",
			Command:     picker[0],
			Description: "External region picker",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
