package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"clipforge/internal/services"
)

// FFmpegVersion returns the first line of `ffmpeg -version`.
func FFmpegVersion(ctx context.Context, binary string, run services.OutputRunner) (string, error) {
	if run == nil {
		run = services.CommandOutput
	}
	out, err := run(ctx, binary, "-hide_banner", "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// CheckFFmpegFilters reports whether binary was built with every named
// filter. Caption burn-in needs "subtitles" (libass); compositing needs
// "crop", "scale" and "vstack".
func CheckFFmpegFilters(ctx context.Context, binary string, run services.OutputRunner, filters ...string) Status {
	status := Status{
		Name:        "FFmpeg filters",
		Command:     binary,
		Description: strings.Join(filters, ", "),
	}
	if run == nil {
		run = services.CommandOutput
	}
	out, err := run(ctx, binary, "-hide_banner", "-filters")
	if err != nil {
		status.Detail = fmt.Sprintf("list filters: %v", err)
		return status
	}

	available := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		// " T.C crop              V->V       Crop the input video."
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			available[fields[1]] = true
		}
	}

	var missing []string
	for _, name := range filters {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		status.Detail = "missing filters: " + strings.Join(missing, ", ")
		return status
	}
	status.Available = true
	return status
}
