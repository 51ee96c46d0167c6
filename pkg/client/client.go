package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://rulekeeper.cc/api/v1/"

// DefaultTimeout bounds connect, response-header and whole-request time.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a non-2xx body is read for the error message.
const maxErrorBody = 1 << 20

// TokenProvider returns the current access token, or "" when signed out.
// It is called once per outgoing request.
type TokenProvider func() string

// Client is the RuleKeeper API client. The endpoint groups all share one
// Client, so they sign requests with the same token provider.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	timeout     time.Duration
	logBodies   bool
	userAgent   string
	base        http.RoundTripper
	tokenSource TokenProvider

	Auth          *AuthService
	Guilds        *GuildService
	Commands      *CommandService
	Config        *ConfigService
	Moderation    *ModerationService
	Twitch        *TwitchService
	YouTube       *YouTubeService
	Roles         *RoleService
	Forms         *FormService
	Tickets       *TicketService
	Backups       *BackupService
	Logs          *LogService
	RoleMenus     *RoleMenuService
	Leaderboard   *LeaderboardService
	Users         *UserService
	Permissions   *PermissionService
	Settings      *SettingsService
	Announcements *AnnouncementService
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBodyLogging logs request and response bodies at debug level.
// Secrets are redacted, but user content is not.
func WithBodyLogging(on bool) Option {
	return func(c *Client) { c.logBodies = on }
}

// WithTransport replaces the underlying round tripper. Logging still
// wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.base = rt
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a new API client rooted at baseURL.
func New(baseURL string, token TokenProvider, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      zap.NewNop(),
		timeout:     DefaultTimeout,
		userAgent:   "rulekeeper-cli",
		tokenSource: token,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = newBaseTransport(c.timeout)
	}

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: &loggingTransport{
			logger:    c.logger,
			logBodies: c.logBodies,
			next:      c.base,
		},
	}

	c.Auth = &AuthService{c}
	c.Guilds = &GuildService{c}
	c.Commands = &CommandService{c}
	c.Config = &ConfigService{c}
	c.Moderation = &ModerationService{c}
	c.Twitch = &TwitchService{c}
	c.YouTube = &YouTubeService{c}
	c.Roles = &RoleService{c}
	c.Forms = &FormService{c}
	c.Tickets = &TicketService{c}
	c.Backups = &BackupService{c}
	c.Logs = &LogService{c}
	c.RoleMenus = &RoleMenuService{c}
	c.Leaderboard = &LeaderboardService{c}
	c.Users = &UserService{c}
	c.Permissions = &PermissionService{c}
	c.Settings = &SettingsService{c}
	c.Announcements = &AnnouncementService{c}
	return c
}

// BaseURL returns the API root this client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func newBaseTransport(timeout time.Duration) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = timeout
	t.ResponseHeaderTimeout = timeout
	return t
}

// guildPath builds /guilds/{id}/parts... with every segment escaped.
func guildPath(guildID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/guilds/")
	b.WriteString(url.PathEscape(guildID))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	// Set here, not in the transport, so http.Client drops it on a
	// redirect to another host.
	if c.tokenSource != nil {
		if tok := c.tokenSource(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if err == io.EOF {
				// 204 or empty body: leave out at its zero value.
				return nil
			}
			return &DecodeError{Err: err}
		}
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		if apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}
