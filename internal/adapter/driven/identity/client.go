// Package identity implements the IdentityVerifier and Authenticator ports
// against the backend's /api/auth endpoints.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.IdentityVerifier = (*Client)(nil)
	_ driven.Authenticator    = (*Client)(nil)
)

const (
	mePath    = "/api/auth/me"
	loginPath = "/api/auth/login"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Client talks to the backend identity service over HTTP.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a Client for the backend at baseURL. timeout bounds every
// call; a timed-out call surfaces as driven.ErrVerifierUnavailable.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing backend URL %q: scheme must be http or https", baseURL)
	}
	return &Client{http: httpClient, baseURL: u}, nil
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// meResponse is the payload of GET /api/auth/me.
type meResponse struct {
	Role        string  `json:"role"`
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name"`
}

// Verify asks the backend whether the credential is still valid.
// Any non-2xx status is driven.ErrInvalidCredential; transport failures and
// malformed payloads are driven.ErrVerifierUnavailable.
func (c *Client) Verify(ctx context.Context, tokenType, token string) (model.Identity, error) {
	endpoint := c.baseURL.JoinPath(mePath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: build request: %w", driven.ErrVerifierUnavailable, err)
	}
	if tokenType == "" {
		tokenType = model.DefaultTokenType
	}
	req.Header.Set("Authorization", tokenType+" "+token)
	req.Header.Set("Accept", "application/json")

	var body meResponse
	if err := c.do(req, &body); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return model.Identity{}, fmt.Errorf("%w: %w", driven.ErrInvalidCredential, se)
		}
		return model.Identity{}, err
	}

	if body.Role == "" || body.UserID == "" {
		return model.Identity{}, fmt.Errorf("%w: identity response missing role or user_id", driven.ErrVerifierUnavailable)
	}

	identity := model.Identity{Role: model.Role(body.Role), UserID: body.UserID}
	if body.DisplayName != nil {
		identity.DisplayName = *body.DisplayName
	}
	return identity, nil
}

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Role     string `json:"role"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// loginResponse is the payload of a successful login.
type loginResponse struct {
	Role        string  `json:"role"`
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name"`
	NextPath    string  `json:"next_path"`
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
}

// Login exchanges role, user id and password for an access token issued by
// the backend. A 4xx status is driven.ErrInvalidCredential; a 5xx status is
// driven.ErrVerifierUnavailable.
func (c *Client) Login(ctx context.Context, in model.LoginRequest) (model.LoginResult, error) {
	payload, err := json.Marshal(loginRequest{Role: string(in.Role), UserID: in.UserID, Password: in.Password})
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("encode login request: %w", err)
	}

	endpoint := c.baseURL.JoinPath(loginPath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("%w: build request: %w", driven.ErrVerifierUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var body loginResponse
	if err := c.do(req, &body); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError {
			return model.LoginResult{}, fmt.Errorf("%w: %w", driven.ErrInvalidCredential, se)
		}
		if se != nil {
			return model.LoginResult{}, fmt.Errorf("%w: %w", driven.ErrVerifierUnavailable, se)
		}
		return model.LoginResult{}, err
	}

	if body.AccessToken == "" || body.Role == "" || body.UserID == "" {
		return model.LoginResult{}, fmt.Errorf("%w: login response missing access_token, role or user_id", driven.ErrVerifierUnavailable)
	}

	res := model.LoginResult{
		Identity:    model.Identity{Role: model.Role(body.Role), UserID: body.UserID},
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
		NextPath:    body.NextPath,
	}
	if body.DisplayName != nil {
		res.DisplayName = *body.DisplayName
	}
	return res, nil
}

// statusError reports a non-2xx response.
type statusError struct {
	method string
	path   string
	code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.method, e.path, e.code)
}

// do sends req and decodes a 2xx JSON body into out. Non-2xx responses are
// returned as *statusError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", driven.ErrVerifierUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &statusError{method: req.Method, path: req.URL.Path, code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", driven.ErrVerifierUnavailable, req.URL.Path, err)
	}
	return nil
}
