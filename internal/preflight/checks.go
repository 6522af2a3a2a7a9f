package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/twitch"
)

// MinWorkDirFreeBytes is the free space a run needs for the downloaded clip,
// the composed video and the captioned output.
const MinWorkDirFreeBytes = 2 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free", humanize.IBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %s", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTwitchCredentials verifies that both credentials are configured.
func CheckTwitchCredentials(clientID, clientSecret string) Result {
	const name = "Twitch credentials"
	creds := twitch.Credentials{ClientID: clientID, ClientSecret: clientSecret}
	if err := creds.Validate(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "Configured"}
}

// CheckOpenAIKey verifies that the OpenAI engine has an API key.
func CheckOpenAIKey(apiKey string) Result {
	const name = "OpenAI API key"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing (set transcription.openai_api_key or OPENAI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "Configured"}
}

// CheckTwitchLogin requests an app access token to prove the credentials work.
func CheckTwitchLogin(ctx context.Context, cfg *config.Config) Result {
	const name = "Twitch login"

	creds := twitch.Credentials{ClientID: cfg.Twitch.ClientID, ClientSecret: cfg.Twitch.ClientSecret}
	client, err := twitch.New(creds,
		twitch.WithAuthURL(cfg.Twitch.AuthURL),
		twitch.WithAPIBaseURL(cfg.Twitch.APIBaseURL),
		twitch.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		return Result{Name: name, Detail: "skipped (credentials missing)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Authenticate(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "App access token issued"}
}

// CheckSystemDeps evaluates the binaries the configured pipeline executes.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (Twitch unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (Twitch unreachable)"
	}
	return err.Error()
}
