/*
Package remote implements vacation.RecordStore over the planner HTTP API.

PURPOSE:
  The CLI is the device: it keeps the local record and uses this client as
  its cloud. Identity travels as a bearer token; the server takes the user
  from the token subject, so the userID argument only labels log lines.

ROUTES:
  GET /api/records/{year}  200 record, 404 none
  PUT /api/records/{year}  204 saved

SEE ALSO:
  - api/handlers.go: the server side
  - vacation/session.go: the caller
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pochivni/planner/vacation"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// StatusError is a non-success response from the server.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return vacation.ErrNotAuthenticated
	}
	return ErrUnexpectedStatus
}

// Client talks to planner serve.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client. token is a JWT issued for the user.
func New(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// LoadYear fetches the record for year. A 404 is no record.
func (c *Client) LoadYear(ctx context.Context, userID string, year int) (*vacation.Data, error) {
	resp, err := c.do(ctx, http.MethodGet, recordPath(year), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, statusError(resp, http.MethodGet, recordPath(year))
	}

	var d vacation.Data
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", vacation.ErrCorruptRecord, err)
	}
	d = vacation.Normalize(d)

	c.logger.Debug("Loaded cloud record",
		zap.String("user", userID),
		zap.Int("year", year),
		zap.Int("days", d.Used()))
	return &d, nil
}

// SaveYear uploads the record for year.
func (c *Client) SaveYear(ctx context.Context, userID string, year int, data vacation.Data) error {
	body, err := json.Marshal(vacation.Normalize(data))
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPut, recordPath(year), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError(resp, http.MethodPut, recordPath(year))
	}

	c.logger.Debug("Saved cloud record",
		zap.String("user", userID),
		zap.Int("year", year))
	return nil
}

func recordPath(year int) string { return fmt.Sprintf("/api/records/%d", year) }

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// errorBody mirrors the API's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func statusError(resp *http.Response, method, path string) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&eb)
	return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: eb.Error}
}
