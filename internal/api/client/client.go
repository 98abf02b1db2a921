// Package client provides a thin HTTP client for the SecondHandPlatform
// API. All authenticated calls attach a bearer token obtained from an
// injected TokenSource; the client never reads credential storage itself.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential for authenticated requests.
// The second return value reports whether a credential is present at all;
// absence is a normal, handled condition.
type TokenSource interface {
	Token() (string, bool)
}

// Client is a thin HTTP client for the SecondHandPlatform API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit installs a client-side token bucket so bursts of user
// actions cannot hammer the API.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// envelope is the standard response wrapper used by the backend for all
// item endpoints: { success, message?, error?, data? }.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// serverMessage returns the display message the server attached to a
// rejection, preferring "message" over "error".
func (e *envelope) serverMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// call performs a request against an envelope-shaped endpoint and returns
// the decoded envelope. A non-2xx status or a success:false body yields an
// *APIError carrying any server-provided message. An empty 2xx body is
// treated as success with an empty envelope.
func (c *Client) call(
	ctx context.Context,
	method, path string,
	body any,
	authed bool,
) (*envelope, error) {
	respBody, status, err := c.send(ctx, method, path, body, authed)
	if err != nil {
		return nil, err
	}

	env := &envelope{Success: true}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil {
			if status >= http.StatusBadRequest {
				return nil, &APIError{StatusCode: status}
			}
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}

	if status >= http.StatusBadRequest || !env.Success {
		return nil, &APIError{StatusCode: status, Message: env.serverMessage()}
	}
	return env, nil
}

// do performs a request against an endpoint that returns a bare JSON body
// (no envelope) and decodes it into dst.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	body, dst any,
	authed bool,
) error {
	respBody, status, err := c.send(ctx, method, path, body, authed)
	if err != nil {
		return err
	}

	if status >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: status}
		var env envelope
		if json.Unmarshal(respBody, &env) == nil {
			apiErr.Message = env.serverMessage()
		}
		return apiErr
	}

	if dst != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) send(
	ctx context.Context,
	method, path string,
	body any,
	authed bool,
) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, ok := c.tokens.Token()
		if !ok {
			return nil, 0, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &ConnError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &ConnError{BaseURL: c.baseURL, Err: err}
	}

	return respBody, resp.StatusCode, nil
}
