package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"clipforge/internal/services"
)

const (
	DefaultAuthURL    = "https://id.twitch.tv/oauth2/token"
	DefaultAPIBaseURL = "https://api.twitch.tv/helix"
	DefaultClipCount  = 5
	// MaxClipCount is the Helix page size limit.
	MaxClipCount = 100
	recentWindow = 24 * time.Hour
)

// Clip listing modes.
const (
	ModeRecent = "recent"
	ModeTop    = "top"
)

// Credentials identify the Twitch application.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate reports missing credential fields.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "twitch", "credentials",
			"missing "+strings.Join(missing, ", ")+" (set [twitch] in config or TWITCH_CLIENT_ID/TWITCH_CLIENT_SECRET)", nil)
	}
	return nil
}

// Clip describes a single Helix clip.
type Clip struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	ViewCount       int       `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
	Duration        float64   `json:"duration"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	BroadcasterName string    `json:"broadcaster_name"`
}

// ClipQuery selects which clips to list.
type ClipQuery struct {
	// Mode is ModeRecent (last 24 hours) or ModeTop (all time).
	Mode  string
	First int
	// Now anchors the recent window; zero means time.Now.
	Now time.Time
}

// Client talks to the Twitch auth and Helix endpoints. It caches the app
// access token after the first successful Authenticate.
type Client struct {
	creds      Credentials
	authURL    string
	apiBaseURL string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAuthURL overrides the OAuth token endpoint.
func WithAuthURL(raw string) Option {
	return func(c *Client) {
		if raw = strings.TrimSpace(raw); raw != "" {
			c.authURL = raw
		}
	}
}

// WithAPIBaseURL overrides the Helix base URL.
func WithAPIBaseURL(raw string) Option {
	return func(c *Client) {
		if raw = strings.TrimSpace(raw); raw != "" {
			c.apiBaseURL = strings.TrimRight(raw, "/")
		}
	}
}

// New creates a Twitch client.
func New(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	client := &Client{
		creds:      creds,
		authURL:    DefaultAuthURL,
		apiBaseURL: DefaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Authenticate obtains an app access token with the client credentials grant.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrAuthentication, "twitch", "authenticate", "token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrAuthentication, "twitch", "authenticate",
			fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, readSnippet(resp.Body)), nil)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return services.Wrap(services.ErrAuthentication, "twitch", "authenticate", "decode token response", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return services.Wrap(services.ErrAuthentication, "twitch", "authenticate", "token response has no access_token", nil)
	}

	c.mu.Lock()
	c.token = payload.AccessToken
	c.mu.Unlock()
	return nil
}

// BroadcasterID resolves a channel login to its user id.
func (c *Client) BroadcasterID(ctx context.Context, login string) (string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return "", services.Wrap(services.ErrValidation, "twitch", "lookup user", "channel name is empty", nil)
	}
	params := url.Values{}
	params.Set("login", login)

	var payload struct {
		Data []struct {
			ID    string `json:"id"`
			Login string `json:"login"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/users", params, "lookup user", &payload); err != nil {
		return "", err
	}
	if len(payload.Data) == 0 || payload.Data[0].ID == "" {
		return "", services.Wrap(services.ErrNotFound, "twitch", "lookup user", fmt.Sprintf("channel %q not found", login), nil)
	}
	return payload.Data[0].ID, nil
}

// Clips lists clips for a broadcaster. Helix orders them by view count. An
// empty listing returns an empty slice and no error.
func (c *Client) Clips(ctx context.Context, broadcasterID string, query ClipQuery) ([]Clip, error) {
	if strings.TrimSpace(broadcasterID) == "" {
		return nil, services.Wrap(services.ErrValidation, "twitch", "list clips", "broadcaster id is empty", nil)
	}
	first := query.First
	if first <= 0 {
		first = DefaultClipCount
	}
	if first > MaxClipCount {
		first = MaxClipCount
	}

	params := url.Values{}
	params.Set("broadcaster_id", broadcasterID)
	params.Set("first", strconv.Itoa(first))
	switch query.Mode {
	case ModeRecent, "":
		now := query.Now
		if now.IsZero() {
			now = time.Now()
		}
		now = now.UTC()
		params.Set("started_at", now.Add(-recentWindow).Format(time.RFC3339))
		params.Set("ended_at", now.Format(time.RFC3339))
	case ModeTop:
	default:
		return nil, services.Wrap(services.ErrValidation, "twitch", "list clips", fmt.Sprintf("unknown mode %q", query.Mode), nil)
	}

	var payload struct {
		Data []Clip `json:"data"`
	}
	if err := c.get(ctx, "/clips", params, "list clips", &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return []Clip{}, nil
	}
	return payload.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, op string, out any) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		return services.Wrap(services.ErrAuthentication, "twitch", op, "not authenticated", nil)
	}

	endpoint := c.apiBaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Client-Id", c.creds.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrTransient, "twitch", op, fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return services.Wrap(services.ErrAuthentication, "twitch", op, "helix rejected the access token", nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrTransient, "twitch", op,
			fmt.Sprintf("helix returned %d (latency=%v)", resp.StatusCode, latency), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrExternalTool, "twitch", op,
			fmt.Sprintf("helix returned %d: %s", resp.StatusCode, readSnippet(resp.Body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode helix response: %w", err)
	}
	return nil
}

// readSnippet returns the start of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(string(data))
}
