package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds connection settings for the simulation API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client performs JSON requests against the simulation API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client. A zero timeout falls back to 15s.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   strings.TrimSpace(cfg.Token),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// APIError is returned for non-2xx responses. Body holds the decoded JSON
// error payload when the backend sent one.
type APIError struct {
	Status int
	Body   any
}

func (e *APIError) Error() string {
	if m, ok := e.Body.(map[string]any); ok {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := m[key].(string); ok && s != "" {
				return fmt.Sprintf("API error %d: %s", e.Status, s)
			}
		}
	}
	if s, ok := e.Body.(string); ok && s != "" {
		return fmt.Sprintf("API error %d: %s", e.Status, s)
	}
	return fmt.Sprintf("API error %d", e.Status)
}

// Get issues a GET request and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		var payload any
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Body = payload
		} else if len(respBody) > 0 {
			apiErr.Body = string(respBody)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
