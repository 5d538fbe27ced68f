// Package airdesk talks to the desk-booking service.
//
// A *Client is unauthenticated and can only log in. Authenticate turns it into
// a *Session, which is the only type that can read or create bookings.
package airdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"deskbook-agent/config"
	"deskbook-agent/internal/token"
)

// CredentialSource supplies the operator credentials.
type CredentialSource interface {
	Credentials() (config.Credentials, error)
}

// Client is an unauthenticated connection to the booking service.
type Client struct {
	baseURL string
	headers map[string]string
	creds   CredentialSource
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates an unauthenticated client. Credentials are only read when Authenticate runs.
func NewClient(cfg *config.AirdeskConfig, creds CredentialSource) *Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// cookiejar.New only fails on a bad PublicSuffixList, and we pass none.
	jar, _ := cookiejar.New(nil)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		creds:   creds,
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Authenticate exchanges the operator credentials for a bearer token.
// It never retries; the returned error wraps one of ErrConfig, ErrPayload,
// ErrTransport, ErrProtocol or ErrAuth.
func (c *Client) Authenticate(ctx context.Context) (*Session, error) {
	creds, err := c.creds.Credentials()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	body, err := json.Marshal(loginRequest{
		Username:        creds.Username,
		Password:        creds.Password,
		SaveCredentials: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal login request: %w", ErrPayload, err)
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, nil, body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read login response: %w", ErrTransport, err)
	}

	var login loginResponse
	if err := json.Unmarshal(raw, &login); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal login response (status %d): %w", ErrProtocol, resp.StatusCode, err)
	}
	if login.Data == nil || login.Data.Token == "" {
		return nil, fmt.Errorf("%w: login response (status %d) carries no token: %q", ErrProtocol, resp.StatusCode, login.Message)
	}

	claims, err := token.Decode(login.Data.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	return &Session{
		client:      c,
		bearer:      login.Data.Token,
		claims:      claims,
		workplaceID: creds.WorkplaceID,
	}, nil
}

// do sends one request. Any failure to send it is reported as ErrTransport.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, bearer string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	return resp, nil
}
