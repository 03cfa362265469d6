package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout   = 120 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
	defaultSteps         = 16
)

// Dialect selects the request shape for a generation endpoint.
type Dialect string

const (
	// DialectDALLE sends size and quality fields.
	DialectDALLE Dialect = "dalle"
	// DialectFlux sends explicit dimensions and inference steps.
	DialectFlux Dialect = "flux"
)

// Config captures the runtime settings for one image backend.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// RenderOptions describes the slide frame to produce.
type RenderOptions struct {
	Width   int
	Height  int
	Quality string
}

// Client issues generation requests against a single backend.
type Client struct {
	cfg        Config
	dialect    Dialect
	httpClient *http.Client

	retryAttempts int
	retryDelay    time.Duration
	sleeper       func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry overrides the attempt count and inter-attempt delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client for the supplied backend and dialect.
func NewClient(cfg Config, dialect Dialect, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		dialect:       dialect,
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	ResponseFormat string `json:"response_format"`
	N              int    `json:"n,omitempty"`

	// DALL-E dialect.
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`

	// Flux dialect.
	ResponseExtension string `json:"response_extension,omitempty"`
	Width             int    `json:"width,omitempty"`
	Height            int    `json:"height,omitempty"`
	InferenceSteps    int    `json:"num_inference_steps,omitempty"`
	Seed              int    `json:"seed,omitempty"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a single frame for the prompt and returns the raw
// image bytes.
func (c *Client) Generate(ctx context.Context, prompt string, opts RenderOptions) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("image generate: prompt required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("image generate: api key required")
	}

	payload := generationRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		ResponseFormat: "b64_json",
	}
	switch c.dialect {
	case DialectDALLE:
		payload.N = 1
		payload.Size = fmt.Sprintf("%dx%d", opts.Width, opts.Height)
		payload.Quality = opts.Quality
		if payload.Quality == "" {
			payload.Quality = "standard"
		}
	case DialectFlux:
		payload.ResponseExtension = "jpg"
		payload.Width = opts.Width
		payload.Height = opts.Height
		payload.InferenceSteps = defaultSteps
		payload.Seed = -1
	default:
		return nil, fmt.Errorf("image generate: unknown dialect %q", c.dialect)
	}

	attempts := c.retryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.generateOnce(ctx, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryableGenerationError(err) || attempt == attempts || ctx.Err() != nil {
			return nil, err
		}
		if err := c.sleep(ctx, c.retryDelay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) generateOnce(ctx context.Context, payload generationRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("image request: encode body: %w", err)
	}
	endpoint := c.cfg.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("image request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded generationResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("image request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("image request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].B64JSON) == "" {
		return nil, errors.New("image request: empty image payload")
	}
	raw, err := base64.StdEncoding.DecodeString(decoded.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("image request: decode base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("image request: decoded image is empty")
	}
	return raw, nil
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("image request: http %d: %s", e.StatusCode, e.Body)
}

func retryableGenerationError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
