// Package api is the HTTP client for the exchange backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/session"
)

// DefaultTimeout bounds every request unless WithHTTPClient overrides it.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the backend on behalf of the session.
type Client struct {
	baseURL        string
	http           *http.Client
	session        *session.Session
	logger         *slog.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUnauthorizedHandler registers fn to run after a 401 has cleared the session.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	if sess == nil {
		return nil, fmt.Errorf("api client needs a session")
	}

	c := &Client{
		baseURL:        u.String(),
		http:           &http.Client{Timeout: DefaultTimeout},
		session:        sess,
		logger:         slog.Default(),
		onUnauthorized: func() {},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &loggingTransport{next: base, logger: c.logger}
	return c, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Items returns the item endpoints.
func (c *Client) Items() *ItemsService { return &ItemsService{c: c} }

// Auth returns the login and signup endpoints.
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

// Users returns the signed-in user's endpoints.
func (c *Client) Users() *UsersService { return &UsersService{c: c} }

// Admin returns the moderation endpoints.
func (c *Client) Admin() *AdminService { return &AdminService{c: c} }

// Notifications returns the notification endpoints.
func (c *Client) Notifications() *NotificationsService { return &NotificationsService{c: c} }

// endpoint resolves an escaped path against the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	if len(query) > 0 {
		return c.baseURL + path + "?" + query.Encode()
	}
	return c.baseURL + path
}

// request is one backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encoding request body: %w", err)
	}
	req.body = bytes.NewReader(data)
	req.contentType = "application/json"
	return req, nil
}

// do sends the request and returns the response body of a 2xx reply.
// Every other outcome is a *model.RemoteError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), r.body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.session.TokenFor(r.path); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &model.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &model.RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
		}
		return body, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	remote := decodeError(resp.StatusCode, resp.Header.Get("Content-Type"), body)

	if remote.Unauthenticated() {
		c.logger.Warn("backend rejected credentials, clearing session", "path", r.path)
		if err := c.session.Clear(ctx); err != nil {
			c.logger.Error("clearing session", "error", err)
		}
		c.onUnauthorized()
	}
	return nil, remote
}

// get issues a GET for path.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query})
}
