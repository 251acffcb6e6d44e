// Package client is a typed HTTP client for the user API.
package client

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
	"time"

	"github.com/usersvc/usersvc/internal/handler/dto"
)

// DefaultTimeout bounds each request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// ErrEmptyBaseURL is returned by New for a blank base URL.
var ErrEmptyBaseURL = errors.New("client: base URL is required")

// APIError is a fail envelope returned by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to a running usersvc instance.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a Client for baseURL. A nil httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", parsed.Scheme)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// Ping calls GET /users/ping and returns the server message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	env, err := c.do(ctx, http.MethodGet, "/users/ping", nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CreateUser calls POST /users and returns the server message.
func (c *Client) CreateUser(ctx context.Context, username, email string) (string, error) {
	body, err := json.Marshal(dto.CreateUserRequest{Username: &username, Email: &email})
	if err != nil {
		return "", fmt.Errorf("client: encode request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/users", body, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// GetUser calls GET /users/{id}. The id is passed through unparsed so the
// server applies its own rules to it.
func (c *Client) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers calls GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var list dto.UserListResponse
	if _, err := c.do(ctx, http.MethodGet, "/users", nil, &list); err != nil {
		return nil, err
	}
	if list.Users == nil {
		list.Users = []dto.UserResponse{}
	}
	return list.Users, nil
}

// envelope mirrors dto.Envelope with a raw data payload.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, data any) (*envelope, error) {
	endpoint := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("client: decode response: %w", err)
	}

	if resp.StatusCode >= 400 || env.Status != dto.StatusSuccess {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return nil, fmt.Errorf("client: decode data: %w", err)
		}
	}
	return &env, nil
}
