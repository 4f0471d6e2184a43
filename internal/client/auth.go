package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/tigerpop/internal/model"
)

// DefaultCASURL is the campus CAS server.
const DefaultCASURL = "https://fed.princeton.edu/cas"

// LoginResult is returned by Login.
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "login"
	if username == "" || password == "" {
		return nil, invalid(op, "username and password are required")
	}

	var out LoginResult
	if _, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   "auth/login",
		body:   map[string]string{"username": username, "password": password},
	}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindHTTP, Op: op, Reason: "no access token in response"}
	}
	return &out, nil
}

// SignupResult is returned by Signup.
type SignupResult struct {
	Message string `json:"message" yaml:"message"`
	UserID  int64  `json:"user_id" yaml:"user_id"`
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*SignupResult, error) {
	const op = "signup"
	if username == "" || email == "" {
		return nil, invalid(op, "username, email and password are required")
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, invalid(op, err.Error())
	}

	var out SignupResult
	if _, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   "auth/signup",
		body:   map[string]string{"username": username, "email": email, "password": password},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CASResult is returned when a CAS ticket validates.
type CASResult struct {
	NetID       string `json:"netid"`
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// User returns the identity asserted by the backend.
func (r *CASResult) User() model.User {
	return model.User{ID: r.UserID, NetID: r.NetID}
}

// ValidateCAS asks the backend to validate a CAS service ticket.
func (c *Client) ValidateCAS(ctx context.Context, ticket, service string) (*CASResult, error) {
	const op = "validate ticket"
	if ticket == "" {
		return nil, invalid(op, "ticket is required")
	}

	q := url.Values{"ticket": {ticket}}
	if service != "" {
		q.Set("service", service)
	}
	var out CASResult
	if _, err := c.send(ctx, op, request{
		method: http.MethodGet,
		path:   "auth/validate",
		query:  q,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify returns the user the backend associates with the session token.
func (c *Client) Verify(ctx context.Context) (*model.User, error) {
	const op = "verify token"
	if err := c.requireToken(op); err != nil {
		return nil, err
	}

	var out struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		NetID    string `json:"netid"`
	}
	if _, err := c.send(ctx, op, request{
		method: http.MethodGet,
		path:   "auth/verify",
	}, &out); err != nil {
		return nil, err
	}
	return &model.User{ID: out.UserID, Username: out.Username, Email: out.Email, NetID: out.NetID}, nil
}

// CASLoginURL returns the CAS login page URL that redirects back to service.
func CASLoginURL(casURL, service string) string {
	if casURL == "" {
		casURL = DefaultCASURL
	}
	return strings.TrimRight(casURL, "/") + "/login?service=" + url.QueryEscape(service)
}

// CallbackURL is the frontend route CAS redirects back to.
func CallbackURL(frontendURL string) string {
	return strings.TrimRight(frontendURL, "/") + "/auth/callback"
}
