// Package tracker wraps the remote Jira Cloud REST API: project
// listing, cursor-paginated issue search, issue CRUD, and status
// transitions. The client is a thin proxy: single attempt per call,
// no retries, no caching — retry policy belongs to the caller or the
// infrastructure layer, not here.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// defaultTimeout bounds every tracker call. A conservative cap on a
// single attempt; there is no retry behind it.
const defaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an upstream error body is carried in
// an Error, to keep log lines and API error details readable.
const maxErrorBody = 500

// Error is the single domain error for tracker failures. It carries
// the upstream HTTP status and a snippet of the response body when
// available.
type Error struct {
	Op         string // operation that failed, e.g. "search issues"
	StatusCode int    // upstream HTTP status, 0 for transport failures
	Body       string // truncated upstream response body
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("tracker: %s: upstream status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("tracker: %s: upstream status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("tracker: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tracker: %s failed", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the tracker said the resource is absent.
func (e *Error) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Config holds the connection settings for one Jira Cloud site.
type Config struct {
	BaseURL  string // e.g. https://example.atlassian.net
	Email    string // account email for basic auth
	APIToken string // API token paired with the email
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client talks to one Jira Cloud site. It is safe for concurrent use
// and holds no per-request state.
type Client struct {
	baseURL  string
	email    string
	apiToken string
	http     *http.Client
	log      *slog.Logger
}

// NewClient builds a tracker client from config. BaseURL, Email and
// APIToken are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tracker: base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("tracker: email and API token are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: timeout},
		log:      logger,
	}, nil
}

// do performs one authenticated JSON round trip. Any transport or
// HTTP-level failure comes back as *Error; the response body is
// decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: truncate(string(raw), maxErrorBody)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
