package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// All storefront endpoints live under the gateway's versioned prefix;
// only the health probe sits at the root.
const apiPrefix = "/api/v1"

const defaultTimeout = 30 * time.Second

// Client issues JSON requests against the storefront gateway. Every call
// merges in the current bearer credential (when one exists) and a fresh
// X-Request-ID. Responses are normalized into three outcomes: success,
// ErrUnauthorized (which fires the unauthorized hook exactly once, and only
// for requests that actually carried a credential), or an error describing
// the rejection/transport failure. The hook is how the unauthorized cascade
// is expressed once instead of per call site.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	authHeader     func() string
	onUnauthorized func()
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAuthHeader sets the provider for the Authorization header value.
// An empty return means the request goes out unauthenticated.
func WithAuthHeader(provider func() string) Option {
	return func(c *Client) {
		c.authHeader = provider
	}
}

// WithUnauthorizedHook registers the callback fired when an authenticated
// request comes back 401/403.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// NewClient creates a client for the gateway at baseURL (scheme and host,
// without the /api/v1 prefix).
func NewClient(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Do issues one API request. body (when non-nil) is JSON-encoded; out (when
// non-nil) receives the decoded 2xx response body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, apiPrefix+path, body, out)
}

// Health probes the gateway's root health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	authenticated := false
	if c.authHeader != nil {
		if hdr := c.authHeader(); hdr != "" {
			req.Header.Set("Authorization", hdr)
			authenticated = true
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return errors.Wrap(ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// A refused credential on an unauthenticated request (e.g. a bad
		// login) is just a rejection, not a reason to tear a session down.
		if authenticated && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		var payload apiError
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &StatusError{Code: resp.StatusCode, Message: payload.text()}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[Client.do] decoding response body")
	}
	return nil
}
