// Package epic talks to the game's backend services: the OAuth token
// endpoint, the world-info endpoint, the storefront catalog, and the public
// cosmetics list. All calls are plain authenticated HTTP; the retrying
// variants implement the background-refresh policy of retrying forever on a
// fixed delay, because no user is ever waiting on them synchronously.
package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"stormwatch/internal/worldinfo"
)

// DefaultRetryDelay is the fixed pause between failed fetch attempts.
const DefaultRetryDelay = 30 * time.Second

// Config points the client at the upstream endpoints.
type Config struct {
	AuthURL      string
	WorldInfoURL string
	CatalogURL   string
	CosmeticsURL string
	ClientID     string
	ClientSecret string
	// RetryDelay overrides DefaultRetryDelay; used by tests.
	RetryDelay time.Duration
}

// Client is safe for concurrent use. Tokens are cached until near expiry.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient builds a client with a bounded per-request timeout.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached bearer token, refreshing it via a
// client-credentials grant when absent or within a minute of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > time.Minute {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("epic: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("epic: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("epic: token request: status %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("epic: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("epic: token response missing access_token")
	}

	c.token = tr.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

// getJSON issues an authenticated GET and returns the raw body.
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("epic: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("epic: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// An unauthorized response may mean the cached token was revoked
		// early; drop it so the next attempt re-grants.
		if resp.StatusCode == http.StatusUnauthorized {
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
		}
		return nil, fmt.Errorf("epic: get %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("epic: read body: %w", err)
	}
	return body, nil
}

// FetchWorldInfo performs a single authenticated fetch and parse of the
// world-state document.
func (c *Client) FetchWorldInfo(ctx context.Context) (*worldinfo.Document, error) {
	body, err := c.getJSON(ctx, c.cfg.WorldInfoURL)
	if err != nil {
		return nil, err
	}
	return worldinfo.Parse(body)
}

// FetchWorldInfoRetry fetches the world-state document, retrying on any
// failure with a fixed delay, indefinitely. Failures are logged, never
// returned; the only way out without a document is context cancellation,
// which yields nil.
func (c *Client) FetchWorldInfoRetry(ctx context.Context) *worldinfo.Document {
	doc, ok := Retry(ctx, c, "world info", c.FetchWorldInfo)
	if !ok {
		return nil
	}
	return doc
}

// FetchCatalog returns the raw storefront catalog blob.
func (c *Client) FetchCatalog(ctx context.Context) ([]byte, error) {
	return c.getJSON(ctx, c.cfg.CatalogURL)
}

// FetchCosmetics returns the raw cosmetics list. The cosmetics endpoint is
// public; no token is attached.
func (c *Client) FetchCosmetics(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.CosmeticsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("epic: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("epic: get %s: %w", c.cfg.CosmeticsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("epic: get %s: status %d", c.cfg.CosmeticsURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Retry runs fetch until it returns without error, pausing the client's
// fixed delay between attempts. fetch should cover the whole attempt
// including any parse step, so a malformed 200 body is retried the same as
// a transport failure and garbage can never reach the caller. Failures are
// logged, never returned; cancellation yields ok=false.
func Retry[T any](ctx context.Context, c *Client, what string, fetch func(context.Context) (T, error)) (T, bool) {
	for {
		v, err := fetch(ctx)
		if err == nil {
			return v, true
		}
		if ctx.Err() != nil {
			var zero T
			return zero, false
		}
		c.log.Error("fetch failed, retrying",
			zap.String("source", what),
			zap.Error(err),
			zap.Duration("delay", c.cfg.RetryDelay))

		select {
		case <-time.After(c.cfg.RetryDelay):
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}
