// Package client is the typed HTTP client for the innovation-board
// backend. Every call returns either the decoded payload or a *Error
// classifying the failure; callers never see raw HTTP details.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is where the backend listens during local use.
const DefaultBaseURL = "http://localhost:5000"

const maxErrorBodySize = 8 * 1024

// Client talks to the Task/Meeting service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// New creates a Client for the service at baseURL. A zero timeout
// leaves the transport's default in place; the board never enforces
// its own deadline beyond that. A nil logger falls back to the logrus
// standard logger.
func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (skipped when out is nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindRejected, Message: "encode request", Err: err}
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), payload)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// doBytes issues a GET and returns the raw response body. Used for the
// generated report and minutes documents.
func (c *Client) doBytes(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	return data, nil
}

// do sends the request and folds transport errors and non-success
// statuses into *Error. On success the caller owns the response body.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(log.Fields{
			"op":       op,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"total_ms": durationToMillis(time.Since(start)),
		}).Debug("request failed")
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	c.logger.WithFields(log.Fields{
		"op":       op,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"total_ms": durationToMillis(time.Since(start)),
	}).Debug("request completed")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	msg := readErrorBody(resp.Body)
	_ = resp.Body.Close()
	kind := KindRejected
	if resp.StatusCode == http.StatusNotFound {
		kind = KindNotFound
	}
	return nil, &Error{Op: op, Kind: kind, Status: resp.StatusCode, Message: msg}
}

// readErrorBody pulls a short human-readable summary out of an error
// response. Backends answer either plain text or {"error": "..."}.
func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wrapped struct {
		Error string `json:"error"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &wrapped); err == nil && wrapped.Error != "" {
		return wrapped.Error
	}
	return strings.TrimSpace(string(data))
}

func decodeJSON(r io.Reader, out any) error {
	return sonic.ConfigStd.NewDecoder(r).Decode(out)
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
