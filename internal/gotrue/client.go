// Package gotrue is a small client for the Supabase auth REST API (GoTrue).
// It covers the calls the API needs: password sign-in, sign-up, sign-out,
// password recovery and update, verification resend, PKCE code exchange and
// user lookup. Failures are returned as *APIError, which exposes the status,
// the GoTrue error code and any Retry-After back-off.
package gotrue

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// User is the subset of the GoTrue user object the API exposes.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is returned by the token endpoints.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Client talks to <projectURL>/auth/v1.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// New returns a client for the Supabase project at projectURL using the
// public anon key.
func New(projectURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(projectURL, "/") + "/auth/v1",
		apiKey:  anonKey,
		hc: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SignUpParams describes a registration. CodeChallenge enables the PKCE flow
// for the confirmation link.
type SignUpParams struct {
	Email         string
	Password      string
	RedirectTo    string
	CodeChallenge string
}

// SignUp registers a user. With e-mail confirmation enabled GoTrue answers
// with the bare user; with auto-confirm it answers with a session. Both are
// reduced to the user.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*User, error) {
	body := map[string]string{"email": p.Email, "password": p.Password}
	withChallenge(body, p.CodeChallenge)

	var out struct {
		User
		Session *struct {
			User User `json:"user"`
		} `json:"session"`
		Nested *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", redirect(p.RedirectTo), "", body, &out); err != nil {
		return nil, err
	}
	switch {
	case out.ID != "":
		return &out.User, nil
	case out.Nested != nil:
		return out.Nested, nil
	case out.Session != nil:
		return &out.Session.User, nil
	}
	return &out.User, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	q := url.Values{"scope": {"local"}}
	return c.do(ctx, http.MethodPost, "/logout", q, accessToken, nil, nil)
}

// ResetPasswordForEmail sends a recovery e-mail. GoTrue answers 200 whether
// or not the address is registered.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo, codeChallenge string) error {
	body := map[string]string{"email": email}
	withChallenge(body, codeChallenge)
	return c.do(ctx, http.MethodPost, "/recover", redirect(redirectTo), "", body, nil)
}

// UpdatePassword sets a new password for the user behind accessToken.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, password string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/user", nil, accessToken, map[string]string{"password": password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ResendVerification re-sends the sign-up confirmation e-mail.
func (c *Client) ResendVerification(ctx context.Context, email, redirectTo string) error {
	body := map[string]any{"type": "signup", "email": email}
	if redirectTo != "" {
		body["options"] = map[string]string{"email_redirect_to": redirectTo}
	}
	return c.do(ctx, http.MethodPost, "/resend", nil, "", body, nil)
}

// ExchangeCodeForSession completes the PKCE flow started by an e-mail link.
func (c *Client) ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*Session, error) {
	var s Session
	q := url.Values{"grant_type": {"pkce"}}
	body := map[string]string{"auth_code": authCode, "code_verifier": codeVerifier}
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetUser returns the user behind accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user", nil, accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, bearer string, in, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gotrue: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("gotrue: decode response: %w", err)
	}
	return nil
}

func redirect(to string) url.Values {
	if to == "" {
		return nil
	}
	return url.Values{"redirect_to": {to}}
}

func withChallenge(body map[string]string, challenge string) {
	if challenge == "" {
		return
	}
	body["code_challenge"] = challenge
	body["code_challenge_method"] = "s256"
}

// parseRetryAfter understands the delta-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
