package amadeus

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

	derr "github.com/Alexico1969/bkk-tracker/internal/domain/errors"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/dto"
)

const tokenPath = "/v1/security/oauth2/token"

// TokenClient exchanges client credentials for a bearer token and caches
// it for the lifetime of the process. The token is refreshed a skew before
// its advertised expiry, so a token handed out is never about to lapse.
type TokenClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	skew         time.Duration
	httpClient   *http.Client
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenClient(baseURL, clientID, clientSecret string, timeout, skew time.Duration) *TokenClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if skew <= 0 {
		skew = 30 * time.Second
	}

	return &TokenClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		skew:         skew,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

func (c *TokenClient) Token(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", derr.ErrMissingCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	token, expiresIn, err := c.exchange(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresAt = c.now().Add(time.Duration(expiresIn)*time.Second - c.skew)
	return c.token, nil
}

func (c *TokenClient) exchange(ctx context.Context) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", derr.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", 0, fmt.Errorf("%w: status %d: %s", derr.ErrAuthFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload dto.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("%w: decode token response: %v", derr.ErrAuthFailed, err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", 0, fmt.Errorf("%w: response carries no access token", derr.ErrAuthFailed)
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 60
	}
	return payload.AccessToken, expiresIn, nil
}
