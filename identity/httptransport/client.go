// Package httptransport implements identity.Transport against the identity
// REST/JSON API. It performs no retries; a call fails with whatever the
// network or the server reports, classified into the internal/errors taxonomy.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

var _ identity.Transport = (*Client)(nil)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx answer from the identity API.
type StatusError struct {
	Status      int
	Code        string
	Description string
}

func (e *StatusError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("status %d: %s (%s)", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Code)
}

func (e *StatusError) Unwrap() error {
	return errors.ErrUnexpectedStatus
}

func (c *Client) Login(ctx context.Context, credentials identity.LoginCredentials) (*identity.AuthResponse, error) {
	var resp identity.AuthResponse
	if err := c.do(ctx, http.MethodPost, identity.RouteLogin, "", credentials, &resp); err != nil {
		return nil, classify(err, errors.ErrInvalidCredentials, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden)
	}
	return tokenPair(&resp, identity.RouteLogin)
}

func (c *Client) Register(ctx context.Context, credentials identity.RegisterCredentials) (*identity.AuthResponse, error) {
	var resp identity.AuthResponse
	if err := c.do(ctx, http.MethodPost, identity.RouteRegister, "", credentials, &resp); err != nil {
		return nil, classify(err, errors.ErrRegistrationConflict, http.StatusBadRequest, http.StatusConflict)
	}
	return tokenPair(&resp, identity.RouteRegister)
}

func (c *Client) FetchUser(ctx context.Context, accessToken string) (*identity.User, error) {
	var user identity.User
	if err := c.do(ctx, http.MethodGet, identity.RouteMe, accessToken, nil, &user); err != nil {
		return nil, classify(err, errors.ErrTokenExpired, http.StatusUnauthorized, http.StatusForbidden)
	}
	return &user, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*identity.AuthResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var resp identity.AuthResponse
	if err := c.do(ctx, http.MethodPost, identity.RouteRefresh, "", body, &resp); err != nil {
		return nil, classify(err, errors.ErrRefreshInvalid, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden)
	}
	return tokenPair(&resp, identity.RouteRefresh)
}

func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*identity.AuthResponse, error) {
	body := map[string]string{"id_token": idToken}
	var resp identity.AuthResponse
	if err := c.do(ctx, http.MethodPost, identity.RouteGoogleLogin, "", body, &resp); err != nil {
		return nil, classify(err, errors.ErrInvalidCredentials, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden)
	}
	return tokenPair(&resp, identity.RouteGoogleLogin)
}

// tokenPair rejects a successful answer that carries no usable session.
func tokenPair(resp *identity.AuthResponse, path string) (*identity.AuthResponse, error) {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, errors.Wrapf(errors.ErrUnexpectedStatus, "[httptransport] %s answered without a token pair", path)
	}
	return resp, nil
}

// GoogleAuthURL is the backend endpoint that starts the Google OAuth redirect.
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + identity.RouteGoogleAuthURL
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[httptransport] encode %s", path)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "[httptransport] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "decode %s response: %v", path, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			se.Code = payload.Error
		}
		se.Description = payload.ErrorDescription
		if se.Description == "" {
			se.Description = payload.Message
		}
	}
	return se
}

// classify maps a status error with one of the given statuses onto sentinel.
// Other failures keep their own classification.
func classify(err error, sentinel error, statuses ...int) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	for _, status := range statuses {
		if se.Status == status {
			return errors.Wrapf(sentinel, "%s", se.Error())
		}
	}
	return err
}
