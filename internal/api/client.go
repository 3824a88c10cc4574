package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/pibble/internal/casing"
	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/logger"
)

// Credentials is what a request carries to identify the caller. At most one
// of Token or DemoEmail is set.
type Credentials struct {
	Token     string
	DemoEmail string
	DemoName  string
}

func (c Credentials) Empty() bool {
	return c.Token == "" && c.DemoEmail == ""
}

// CredentialSource supplies credentials and is told when the server rejects them
type CredentialSource interface {
	Credentials() Credentials
	Invalidate()
}

// Client talks to the ProtectPibble API
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for baseURL. Trailing slashes are trimmed.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func isAuthPath(path string) bool {
	return path == "/auth/login" || path == "/auth/register"
}

// isPublicPath reports paths that may be called while signed out
func isPublicPath(path string) bool {
	return isAuthPath(path) || path == "/health"
}

// Do sends one request. body, when non-nil, is encoded with wire key casing;
// a JSON response is decoded into out, when non-nil, with client key casing.
// Failures are returned as *Error. Nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	authPath := isAuthPath(path)

	var creds Credentials
	if !authPath {
		if c.creds != nil {
			creds = c.creds.Credentials()
		}
		if creds.Empty() && !isPublicPath(path) {
			return unauthorizedLocal()
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := casing.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	case creds.DemoEmail != "":
		req.Header.Set("X-Demo-Email", creds.DemoEmail)
		if creds.DemoName != "" {
			req.Header.Set("X-Demo-Name", creds.DemoName)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("API request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return networkError(err, "unable to reach %s", c.baseURL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err, "reading response: %v", err)
	}
	logger.Debug("API request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && !authPath && c.creds != nil {
			c.creds.Invalidate()
		}
		return responseError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 || !isJSON(resp.Header.Get("Content-Type")) {
		return nil
	}
	if err := casing.Unmarshal(data, out); err != nil {
		return &Error{
			Status:  0,
			Message: fmt.Sprintf("Network error: unreadable response from %s", path),
			Body:    data,
			Err:     err,
		}
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
