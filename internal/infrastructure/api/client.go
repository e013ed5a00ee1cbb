// Package api wraps outbound calls to the clinic REST API. It attaches
// bearer auth, normalizes error responses, and nothing else: no retries,
// no caching, no request fencing.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinadm/internal/shared/errors"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the clinic API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// NewClient creates a new clinic API client.
//
// Parameters:
//   - baseURL: The API base URL (e.g., "https://clinic.example.com/api")
//   - tokens: The session token source; may yield "" for public endpoints
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOptions carries the optional query parameters and JSON body.
type RequestOptions struct {
	Params url.Values
	Body   any
}

// Request performs an API call and decodes the JSON response into result.
// Non-2xx responses come back as *errors.AppError with the server's
// "detail" message; transport failures as a connectivity error.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions, result any) error {
	if opts == nil {
		opts = &RequestOptions{}
	}

	var reqBody io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, opts.Params), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError("cannot reach the server", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError("response interrupted", err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a bearer token via the form-encoded
// /token endpoint. A 429 surfaces as a rate-limited error so the caller
// can show it distinctly from a bad-credentials failure.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/token", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError("cannot reach the server", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewNetworkError("response interrupted", err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp.StatusCode, respBody)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.NewUnauthorizedError("server returned no access token")
	}
	return token.AccessToken, nil
}

// Download fetches a file attachment and recovers the suggested filename
// from the Content-Disposition header. The filename is "" when the server
// does not suggest one.
func (c *Client) Download(ctx context.Context, path string, params url.Values) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, params), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.NewNetworkError("cannot reach the server", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.NewNetworkError("response interrupted", err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeError(resp.StatusCode, respBody)
	}

	return respBody, attachmentFilename(resp.Header.Get("Content-Disposition")), nil
}

func (c *Client) url(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decodeError maps a non-2xx response onto the client error taxonomy,
// preferring the server's human-readable "detail" field.
func decodeError(status int, body []byte) *errors.AppError {
	detail := extractDetail(body)

	switch {
	case status == http.StatusUnauthorized:
		return withDefault(errors.NewUnauthorizedError, detail, "authentication failed")
	case status == http.StatusForbidden:
		return withDefault(errors.NewForbiddenError, detail, "not allowed")
	case status == http.StatusNotFound:
		return withDefault(errors.NewNotFoundError, detail, "not found")
	case status == http.StatusTooManyRequests:
		return withDefault(errors.NewRateLimitedError, detail, "too many requests")
	case status >= 400 && status < 500:
		return withDefault(errors.NewValidationError, detail, "request rejected").WithCode(status)
	default:
		return withDefault(errors.NewInternalError, detail, "server error").WithCode(status)
	}
}

func withDefault(make func(string, ...string) *errors.AppError, detail, fallback string) *errors.AppError {
	if detail == "" {
		detail = fallback
	}
	return make(detail)
}

// extractDetail pulls the "detail" field out of an error body. The field
// is usually a string; structured validation details are flattened to
// their JSON form so something readable always comes back.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}

func attachmentFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
