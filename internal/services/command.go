package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// diagnosticLines bounds how much tool output is folded into an error.
const diagnosticLines = 20

// CommandRunner executes an external tool. Implementations must block until
// the process exits and include the tool's diagnostic output in the error.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// RunCommand is the default CommandRunner. It runs the binary with the
// provided arguments and returns an error carrying the tail of the combined
// output when the process fails.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if detail := Diagnostic(output); detail != "" {
		return fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Diagnostic trims tool output down to its last lines.
func Diagnostic(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > diagnosticLines {
		lines = lines[len(lines)-diagnosticLines:]
	}
	return strings.Join(lines, "\n")
}

// OutputRunner executes an external tool and returns its standard output.
// Standard error is folded into the returned error on failure.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandOutput is the default OutputRunner.
func CommandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err == nil {
		return output, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if detail := Diagnostic([]byte(stderr.String())); detail != "" {
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}
