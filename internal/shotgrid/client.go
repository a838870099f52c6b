/*
Package shotgrid is a client for the ShotGrid REST API (v1).

It covers the calls a reporting run needs: OAuth client-credentials login,
entity schema reads and field creation, filtered entity searches, and
batch record creation.
*/
package shotgrid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rpggio/datapoints/internal/repository"
)

const (
	apiPrefix = "/api/v1"

	contentTypeJSON        = "application/json"
	contentTypeFilterArray = "application/vnd+shotgun.api3_array+json"

	defaultPageSize = 500
	// tokens are renewed this long before they expire
	expirySkew = 30 * time.Second
)

// Ensure Client implements repository.SiteRepository
var _ repository.SiteRepository = (*Client)(nil)

// Client talks to one ShotGrid site with an access token obtained at connect time.
// It keeps only the token pair, never the script credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
	now        func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPageSize sets the number of records requested per search page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func newClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		pageSize:   defaultPageSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON sends body as JSON and decodes a successful response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path, contentType string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shotgrid %s request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode shotgrid %s response: %w", op, err)
	}
	return nil
}
