package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pathlight/internal/platform/clock"
)

const (
	defaultRequestTimeout  = 15 * time.Second
	defaultGenerateTimeout = 5 * time.Minute
	retryDelay             = 2 * time.Second
	generateAttempts       = 3
)

// TokenSource supplies the bearer credential for authenticated calls.
// An empty token means the call goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the typed facade over the remote generation service.
// All operations return *Error on failure.
type Client struct {
	baseURL         string
	tokens          TokenSource
	httpClient      *http.Client
	sleeper         clock.Sleeper
	requestTimeout  time.Duration
	generateTimeout time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeouts overrides the short and long call deadlines.
func WithTimeouts(request, generate time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = request
		c.generateTimeout = generate
	}
}

// WithSleeper replaces the retry delay primitive, for tests.
func WithSleeper(sleeper clock.Sleeper) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New creates a client for the given base URL. tokens may be nil for an
// always-unauthenticated client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		tokens:          tokens,
		httpClient:      &http.Client{},
		sleeper:         clock.SystemClock{},
		requestTimeout:  defaultRequestTimeout,
		generateTimeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate submits a generation request. Path generation runs on
// externally-managed compute that can be cold, so the call uses the long
// deadline and retries up to two extra times, with a fixed delay, when the
// attempt dies in transport (timeout or unreachable). Server-rejected
// responses surface immediately.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var lastErr error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleeper.Sleep(ctx, retryDelay); err != nil {
				return GenerateResponse{}, classifyTransport(err)
			}
		}
		out := GenerateResponse{}
		err := c.do(ctx, http.MethodPost, "/api/generate", c.generateTimeout, req, &out)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if apiErr, ok := AsError(err); !ok || !apiErr.Retryable() {
			return GenerateResponse{}, err
		}
	}
	return GenerateResponse{}, lastErr
}

// Status fetches the current state of an in-flight task.
func (c *Client) Status(ctx context.Context, taskID string) (StatusResponse, error) {
	out := StatusResponse{}
	err := c.do(ctx, http.MethodGet, "/api/status/"+url.PathEscape(taskID), c.requestTimeout, nil, &out)
	return out, err
}

// Result fetches the artifact produced by a finished task.
func (c *Client) Result(ctx context.Context, taskID string) (PathPayload, error) {
	out := PathPayload{}
	err := c.do(ctx, http.MethodGet, "/api/result/"+url.PathEscape(taskID), c.requestTimeout, nil, &out)
	return out, err
}

// SavePath persists a path remotely and returns the server-assigned id.
func (c *Client) SavePath(ctx context.Context, path PathPayload) (SavePathResponse, error) {
	out := SavePathResponse{}
	err := c.do(ctx, http.MethodPost, "/api/save-path", c.requestTimeout, SavePathRequest{Path: path}, &out)
	return out, err
}

// ListPaths fetches every saved path for the authenticated user.
func (c *Client) ListPaths(ctx context.Context) ([]PathPayload, error) {
	out := ListPathsResponse{}
	if err := c.do(ctx, http.MethodGet, "/api/paths", c.requestTimeout, nil, &out); err != nil {
		return nil, err
	}
	return out.Paths, nil
}

// GetPath fetches one saved path by id.
func (c *Client) GetPath(ctx context.Context, id string) (PathPayload, error) {
	out := PathPayload{}
	err := c.do(ctx, http.MethodGet, "/api/paths/"+url.PathEscape(id), c.requestTimeout, nil, &out)
	return out, err
}

// DeletePath removes a saved path.
func (c *Client) DeletePath(ctx context.Context, id string) error {
	out := SuccessResponse{}
	return c.do(ctx, http.MethodDelete, "/api/paths/"+url.PathEscape(id), c.requestTimeout, nil, &out)
}

// UpdateMilestone flips the completion flag for one milestone index.
func (c *Client) UpdateMilestone(ctx context.Context, pathID string, index int, completed bool) error {
	out := SuccessResponse{}
	body := UpdateMilestoneRequest{MilestoneIndex: index, Completed: completed}
	return c.do(ctx, http.MethodPost, "/api/paths/"+url.PathEscape(pathID)+"/milestone", c.requestTimeout, body, &out)
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	out := AuthResponse{}
	err := c.do(ctx, http.MethodPost, "/auth/api/login", c.requestTimeout, LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Register creates an account and returns a token and profile.
func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	out := AuthResponse{}
	err := c.do(ctx, http.MethodPost, "/auth/api/register", c.requestTimeout, RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	out := SuccessResponse{}
	return c.do(ctx, http.MethodPost, "/auth/api/logout", c.requestTimeout, nil, &out)
}

// Health checks reachability of the remote service.
func (c *Client) Health(ctx context.Context) error {
	out := HealthResponse{}
	return c.do(ctx, http.MethodGet, "/health", c.requestTimeout, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, body, out any) error {
	callCtx, cancel := callContext(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}
	if resp.StatusCode >= 400 {
		return serverError(resp.StatusCode, respBody)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// callContext applies the facade deadline unless the caller set its own.
func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
