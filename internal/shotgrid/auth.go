package shotgrid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/repository"
)

type tokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// Connect logs in to the site at baseURL with a script's credentials and
// returns a client holding the resulting access token.
func Connect(ctx context.Context, baseURL string, creds config.Credentials, opts ...Option) (*Client, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: script name and key are required", repository.ErrInvalidInput)
	}

	c := newClient(baseURL, opts...)
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ScriptName},
		"client_secret": {creds.ScriptKey},
	}
	if err := c.exchange(ctx, form); err != nil {
		return nil, err
	}
	return c, nil
}

// Dialer connects to sites over a shared HTTP client.
type Dialer struct {
	httpClient *http.Client
	opts       []Option
}

// NewDialer creates a dialer whose calls time out after timeout; zero means no timeout.
func NewDialer(timeout time.Duration, opts ...Option) *Dialer {
	return &Dialer{
		httpClient: &http.Client{Timeout: timeout},
		opts:       opts,
	}
}

// Dial implements site.Dialer.
func (d *Dialer) Dial(ctx context.Context, baseURL string, creds config.Credentials) (repository.SiteRepository, error) {
	opts := append([]Option{WithHTTPClient(d.httpClient)}, d.opts...)
	c, err := Connect(ctx, baseURL, creds, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// token returns a valid access token, refreshing it when it is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, refresh, expiresAt := c.accessToken, c.refreshToken, c.expiresAt
	c.mu.Unlock()

	if token != "" && (expiresAt.IsZero() || c.now().Before(expiresAt)) {
		return token, nil
	}
	if refresh == "" {
		return "", fmt.Errorf("%w: access token expired and no refresh token was issued", repository.ErrUnauthorized)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
	}
	if err := c.exchange(ctx, form); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, nil
}

// exchange posts a grant to the token endpoint and stores the issued tokens.
func (c *Client) exchange(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/auth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shotgrid auth request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		status := resp.StatusCode
		// the token endpoint reports bad credentials as 400
		if status == http.StatusBadRequest {
			status = http.StatusUnauthorized
		}
		return &APIError{Op: "auth", StatusCode: status, Message: errorMessage(data)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("failed to decode shotgrid auth response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: auth response carried no access token", repository.ErrUnauthorized)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.refreshToken = tok.RefreshToken
	}
	c.expiresAt = time.Time{}
	if tok.ExpiresIn > 0 {
		c.expiresAt = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expirySkew)
	}
	return nil
}
