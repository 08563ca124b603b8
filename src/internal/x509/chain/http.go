// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/helper/gc"
)

var (
	// ErrUnsupportedScheme indicates a URL whose scheme cannot be fetched over HTTP.
	ErrUnsupportedScheme = errors.New("x509chain: unsupported URL scheme")

	// ErrHTTPStatus indicates a non-200 HTTP response.
	ErrHTTPStatus = errors.New("x509chain: unexpected HTTP status")
)

// HTTPConfig holds HTTP client configuration for certificate operations
type HTTPConfig struct {
	Timeout   time.Duration // HTTP request timeout
	Version   string        // Application version for User-Agent
	UserAgent string        // Custom User-Agent string, if empty will be constructed from Version
	// MaxBodySize caps downloaded bodies; zero means 10 MiB.
	MaxBodySize int64

	mu     sync.Mutex
	client *http.Client
}

const defaultMaxBodySize = 10 << 20

// NewHTTPConfig creates a new HTTP configuration with default values.
//
// It initializes the configuration with a default timeout of 10 seconds
// and the provided application version.
//
// Parameters:
//   - version: Application version string
//
// Returns:
//   - *HTTPConfig: New HTTP configuration
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: 10 * time.Second,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("X509-Trust-Verifier/%s (+https://github.com/H0llyW00dzZ/x509-trust-verifier)", c.Version)
}

// Client returns an HTTP client configured with the current timeout.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.client = &http.Client{Timeout: c.Timeout}
		return c.client
	}

	if c.client.Timeout != c.Timeout {
		c.client.Timeout = c.Timeout
	}

	return c.client
}

// SetClient replaces the HTTP client, for example with an [httptest] server
// client.
//
// [httptest]: https://pkg.go.dev/net/http/httptest
func (c *HTTPConfig) SetClient(client *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = client
}

// CheckURL reports whether raw is an http or https URL.
func CheckURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedScheme, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}
	return nil
}

// Get downloads rawURL and returns a private copy of the body.
func (c *HTTPConfig) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, "", "", nil)
}

// Post sends body to rawURL and returns a private copy of the response body.
func (c *HTTPConfig) Post(ctx context.Context, rawURL, contentType, accept string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, contentType, accept, body)
}

func (c *HTTPConfig) do(ctx context.Context, method, rawURL, contentType, accept string, body []byte) ([]byte, error) {
	if err := CheckURL(rawURL); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}

	// Set the User-Agent header with version information and GitHub link
	req.Header.Set("User-Agent", c.GetUserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, rawURL, resp.StatusCode)
	}

	limit := c.MaxBodySize
	if limit <= 0 {
		limit = defaultMaxBodySize
	}

	// Get a buffer from the pool
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, limit)); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
