// Package client is the typed HTTP layer over the marketplace backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout applies when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the credential and identity of the current session.
// The session store implements it.
type TokenSource interface {
	Token() string
	UserID() (int64, bool)
}

type noSession struct{}

func (noSession) Token() string         { return "" }
func (noSession) UserID() (int64, bool) { return 0, false }

// Client talks to the backend's /api endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger

	mu     sync.Mutex
	buying map[int64]struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc for requests. A cookie jar is attached to a copy
// when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens and user ids come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend rooted at baseURL, e.g.
// "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  noSession{},
		logger:  zap.NewNop(),
		buying:  make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}
	return c, nil
}

// request describes one backend call.
type request struct {
	method string
	path   string // relative to /api
	query  url.Values
	body   any // JSON encoded when non-nil
	raw    io.Reader
	ctype  string
	header http.Header
}

// send performs r, decoding a 2xx body into out when out is non-nil.
// It returns the response status.
func (c *Client) send(ctx context.Context, op string, r request, out any) (int, error) {
	u := c.baseURL.JoinPath("api", r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	body := r.raw
	ctype := r.ctype
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return 0, &Error{Kind: KindInvalid, Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
		ctype = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return 0, &Error{Kind: KindInvalid, Op: op, Err: fmt.Errorf("building request: %w", err)}
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("method", r.method),
			zap.String("path", u.Path),
			zap.Error(err),
		)
		return 0, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("op", op),
		zap.String("method", r.method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, classify(op, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return resp.StatusCode, &Error{
			Kind:   KindHTTP,
			Op:     op,
			Status: resp.StatusCode,
			Reason: "malformed response",
			Err:    err,
		}
	}
	return resp.StatusCode, nil
}

// requireToken fails with KindAuthRequired before any request is made when
// there is no session credential.
func (c *Client) requireToken(op string) error {
	if c.tokens.Token() == "" {
		return authRequired(op)
	}
	return nil
}

// requireUser returns the session user id or a KindAuthRequired error.
func (c *Client) requireUser(op string) (int64, error) {
	id, ok := c.tokens.UserID()
	if !ok {
		return 0, authRequired(op)
	}
	return id, nil
}
