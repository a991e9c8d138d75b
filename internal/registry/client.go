// Package registry talks to the remote capability registry: it fetches the
// agent roster and submits missions. It never mutates local state.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
)

const (
	RosterPath  = "/api/v1/agents"
	MissionPath = "/api/v1/mission"

	APIKeyHeader    = "X-API-Key"
	RequestIDHeader = "X-Request-ID"
	// The tunnel in front of the registry serves an interstitial page unless
	// this header is present.
	BypassHeader = "ngrok-skip-browser-warning"
	BypassValue  = "69420"

	DefaultTimeout = 30 * time.Second

	maxRosterBytes = 8 << 20
	errorBodyChars = 240
)

// Endpoint identifies one registry instance. It is passed by value so an
// in-flight call keeps the endpoint it was issued with.
type Endpoint struct {
	BaseURL string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
}

// Configured reports whether there is anything to talk to.
func (e Endpoint) Configured() bool {
	return strings.TrimSpace(e.BaseURL) != ""
}

// URL joins path onto the base URL with trailing slashes removed.
func (e Endpoint) URL(path string) string {
	return strings.TrimRight(strings.TrimSpace(e.BaseURL), "/") + path
}

// NetworkError is the only failure kind the client reports. Transport
// errors, non-2xx statuses and unreadable responses all fold into it.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: http %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err wraps a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
	newID      func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each round trip. The core enforces no timeout of its
// own; this is the network layer's.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRoster reads the agent roster. A single failed attempt is returned
// as a *NetworkError; there are no retries.
func (c *Client) FetchRoster(ctx context.Context, ep Endpoint) (arsenal.Roster, error) {
	resp, err := c.do(ctx, ep, "fetch roster", http.MethodGet, RosterPath, nil)
	if err != nil {
		return arsenal.Roster{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxRosterBytes+1))
	if err != nil {
		return arsenal.Roster{}, &NetworkError{Op: "fetch roster", URL: ep.URL(RosterPath), StatusCode: resp.StatusCode, Err: err}
	}
	if len(payload) > maxRosterBytes {
		return arsenal.Roster{}, &NetworkError{
			Op:         "fetch roster",
			URL:        ep.URL(RosterPath),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("roster exceeds %d bytes", maxRosterBytes),
		}
	}
	return decodeRoster(payload), nil
}

// SubmitMission posts a free-form task. Only the outcome of the round trip
// matters; the response body is discarded.
func (c *Client) SubmitMission(ctx context.Context, ep Endpoint, task string) error {
	body, err := json.Marshal(missionRequest{Task: task})
	if err != nil {
		return &NetworkError{Op: "submit mission", URL: ep.URL(MissionPath), Err: err}
	}
	resp, err := c.do(ctx, ep, "submit mission", http.MethodPost, MissionPath, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRosterBytes))
	return nil
}

func (c *Client) do(ctx context.Context, ep Endpoint, op, method, path string, body []byte) (*http.Response, error) {
	target := ep.URL(path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	requestID := c.newID()
	req.Header.Set(APIKeyHeader, ep.APIKey)
	req.Header.Set(BypassHeader, BypassValue)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	logEvent := c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", target).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(started))
	if err != nil {
		logEvent.Err(err).Msg("registry request failed")
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	logEvent.Int("status", resp.StatusCode).Msg("registry request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyChars*4))
		return nil, &NetworkError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(compactSingleLine(string(snippet), errorBodyChars)),
		}
	}
	return resp, nil
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	if compact == "" {
		return "empty response body"
	}
	if len(compact) <= limit {
		return compact
	}
	return compact[:limit-3] + "..."
}
