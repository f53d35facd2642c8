package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("not found")
)

// StatusError describes a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, body)
}

// Is lets errors.Is match the sentinel for the status class
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// retryConfig controls how idempotent requests are retried
type retryConfig struct {
	attempts uint
	delay    time.Duration
}

var retryConfigDefault = retryConfig{
	attempts: 3,
	delay:    200 * time.Millisecond,
}

// ClientOpt configures a Client
type ClientOpt func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(lggr *zap.SugaredLogger) ClientOpt {
	return func(c *Client) {
		c.lggr = lggr
	}
}

// WithRetry sets the number of attempts and the delay between attempts for GETs.
// Zero attempts means a single attempt, not retry-forever.
func WithRetry(attempts uint, delay time.Duration) ClientOpt {
	return func(c *Client) {
		if attempts == 0 {
			attempts = 1
		}
		c.retry = retryConfig{attempts: attempts, delay: delay}
	}
}

// WithToken sets the initial bearer token
func WithToken(token string) ClientOpt {
	return func(c *Client) {
		c.token = token
	}
}

// Client talks JSON to the catalog REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	lggr       *zap.SugaredLogger
	retry      retryConfig

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		lggr:  zap.NewNop().Sugar(),
		retry: retryConfigDefault,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token; an empty token disables the header
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do sends a JSON request to path (relative to the base URL) and decodes the
// response into out when out is non-nil. GET requests are retried on
// transport errors and 5xx responses.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	if method != http.MethodGet {
		return c.do(ctx, method, path, payload, out)
	}

	return retry.Do(func() error {
		err := c.do(ctx, method, path, payload, out)
		var se *StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(c.retry.attempts),
		retry.Delay(c.retry.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.lggr.Debugw("retrying request", "method", method, "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	reqURL := c.baseURL + strings.TrimPrefix(path, "/")

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.lggr.Debugw("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.lggr.Debugw("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response of %s %s: %w", method, path, err)
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Access string `json:"access"`
}

// Login exchanges credentials for a token and installs it on the client
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.Do(ctx, http.MethodPost, "auth/login/", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	token := resp.Token
	if token == "" {
		token = resp.Access
	}
	if token == "" {
		return "", errors.New("login failed: response carried no token")
	}
	c.SetToken(token)
	return token, nil
}

// Logout drops the token
func (c *Client) Logout() {
	c.SetToken("")
}
