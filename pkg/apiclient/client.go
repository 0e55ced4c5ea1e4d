package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the total request timeout applied unless overridden.
const DefaultTimeout = 30 * time.Second

// Client is a JSON-over-HTTP client bound to a single base URL.
// Cookies set by the backend are stored in the jar and forwarded
// automatically on subsequent requests, so callers never attach
// credentials by hand.
type Client struct {
	http      *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

// New creates a Client for the given base URL.
//
// Example:
//
//	client, err := apiclient.New("http://localhost:3000/api",
//	    apiclient.WithTimeout(10*time.Second),
//	)
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidBaseURL
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Get performs a GET request and decodes the response into out.
// Any failure is returned as *Error.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response
// into out. Any failure is returned as *Error.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// errorBody is the error shape the backend responds with.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(requestError(err), method, path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return c.fail(requestError(err), method, path)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The request left the client but no response came back:
		// DNS failure, refused connection, timeout, canceled context.
		return c.fail(&Error{
			Category:   CategoryNetwork,
			Message:    NetworkMessage,
			StatusCode: StatusNoResponse,
		}, method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&Error{
			Category:   CategoryNetwork,
			Message:    NetworkMessage,
			StatusCode: StatusNoResponse,
		}, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(normalizeResponse(resp.StatusCode, data), method, path)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return c.fail(requestError(err), method, path)
		}
	}

	if c.log != nil {
		c.log.DebugContext(ctx, "request completed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
	}

	return nil
}

// normalizeResponse maps a non-2xx response to the single error shape.
// Category and message come from the response body when present.
func normalizeResponse(status int, data []byte) *Error {
	e := &Error{
		Category:   CategoryAPI,
		Message:    FallbackMessage,
		StatusCode: status,
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			e.Category = body.Error
		}
		if body.Message != "" {
			e.Message = body.Message
		}
	}

	var detail any
	if err := json.Unmarshal(data, &detail); err == nil {
		e.Detail = detail
	}

	return e
}

// requestError maps a failure to build or encode the request.
func requestError(err error) *Error {
	msg := FallbackMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{
		Category:   CategoryRequest,
		Message:    msg,
		StatusCode: 500,
	}
}

func (c *Client) fail(e *Error, method, path string) error {
	if c.log != nil {
		c.log.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("category", e.Category),
			slog.Int("status", e.StatusCode),
		)
	}
	return e
}
