// Package client talks to the campus asset REST API. Every request carries
// the session's bearer token; a 401 clears the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/session"
)

// DefaultTimeout applies to every request; a timed-out request is a failure
const DefaultTimeout = 30 * time.Second

// Client is safe for concurrent use
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	now     func() time.Time
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithClock replaces time.Now for cache-busting parameters
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for baseURL, which includes the /api prefix
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with
func (c *Client) Session() *session.Session {
	return c.session
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// cacheBust adds the _t parameter that defeats intermediary caches
func (c *Client) cacheBust(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	return q
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	length      int64
	contentType string
	anonymous   bool
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends r and returns the response only for 2xx statuses
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if !r.anonymous && token == "" {
		return nil, ErrNotAuthenticated
	}

	target := c.endpoint(r.path, r.query)
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, err
	}
	if r.length > 0 {
		req.ContentLength = r.length
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("Sending request", "method", r.method, "path", r.path)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("Failed to connect to server", "error", err, "method", r.method, "path", r.path)
		return nil, &TransportError{Op: r.method, URL: target, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := decodeError(resp)
	if resp.StatusCode == http.StatusUnauthorized && !r.anonymous && c.session != nil {
		log.Warn("Server rejected the session token", "path", r.path)
		c.session.Unauthorized(ctx)
	} else {
		log.Error("Server returned error", "status", resp.StatusCode, "error", apiErr.Message, "path", r.path)
	}
	return nil, apiErr
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = payload.Error
	if apiErr.Message == "" {
		apiErr.Message = payload.Message
	}
	if len(payload.Details) > 0 {
		details := map[string]any{}
		if err := json.Unmarshal(payload.Details, &details); err == nil {
			apiErr.Details = make(map[string]string, len(details))
			for k, v := range details {
				apiErr.Details[k] = fmt.Sprint(v)
			}
		}
	}
	return apiErr
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any, anonymous bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentType, anonymous: anonymous})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp, out)
}

func (c *Client) getBinary(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: c.endpoint(path, query), Err: err}
	}
	return data, nil
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("Failed to decode response", "error", err, "status", resp.StatusCode)
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
