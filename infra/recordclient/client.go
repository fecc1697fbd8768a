// Package recordclient talks to a remote record store over HTTP. Each
// collection is exposed as a records.Store so the dispatch queues can run on
// a store hosted elsewhere.
package recordclient

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

	apirecords "github.com/kilianp07/lift/api/records"
	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/logger"
	coremon "github.com/kilianp07/lift/core/monitoring"
	"github.com/kilianp07/lift/core/records"
)

// StatusError is returned for responses that are neither successful nor
// mapped to a records error.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// Client performs requests against the record store API.
type Client struct {
	base       string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// New returns a Client for cfg.BaseURL.
func New(cfg config.RemoteConfig, log logger.Logger) (*Client, error) {
	cfg.SetDefaults()
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Client{
		base:       strings.TrimSuffix(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: cfg.Timeout()},
		maxRetries: cfg.Retries(),
		backoff:    cfg.Backoff(),
		log:        log,
	}, nil
}

// Store returns the records.Store view of collection c.
func (c *Client) Store(col records.Collection) *Store {
	return &Store{c: c, col: col}
}

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (apirecords.Health, error) {
	var h apirecords.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

// idempotent reports whether repeating method cannot change the outcome. A
// create whose response was lost may already be committed, so POST is sent
// once.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// do sends the request and decodes a successful body into out. Transport
// errors and 5xx responses of idempotent requests are retried with
// exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}
	retries := c.maxRetries
	if !idempotent(method) {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		retry, err := c.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			return err
		}
		c.log.Warnf("%s %s attempt %d failed: %v", method, path, attempt+1, err)
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	coremon.CaptureException(lastErr, map[string]string{"module": "recordclient", "path": path})
	return lastErr
}

// once performs a single attempt and reports whether a failure is worth
// retrying.
func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return false, nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
		return false, nil
	}
	msg := errorMessage(data)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: %s", records.ErrNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return false, &records.ValidationError{Reason: msg}
	case resp.StatusCode >= 500:
		return true, &StatusError{Code: resp.StatusCode, Message: msg}
	}
	return false, &StatusError{Code: resp.StatusCode, Message: msg}
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

// IsStatus reports whether err carries the HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
