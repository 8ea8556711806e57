package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// TokenRefreshMargin 만료 1시간 전에 재발급
	TokenRefreshMargin = 1 * time.Hour

	defaultTokenTTL = 24 * time.Hour
	rateLimitHold   = 65 * time.Second // EGW00133: 1분당 1회 + 5초 버퍼
)

// AuthClient issues and caches access tokens, one per app key.
// 같은 appKey를 쓰는 계좌는 토큰을 공유함.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	tokens map[string]*cachedToken

	// appKey별 발급 요청 합치기
	sf singleflight.Group
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
	holdUntil   time.Time
}

// NewAuthClient creates a new AuthClient
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		tokens:     make(map[string]*cachedToken),
	}
}

// WithClock overrides the clock (tests)
func (c *AuthClient) WithClock(now func() time.Time) *AuthClient {
	c.now = now
	return c
}

// TokenResponse represents KIS token API response
type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	AccessTokenExpired string `json:"access_token_token_expired"` // "2006-01-02 15:04:05" (KST)
	TokenType          string `json:"token_type"`
	ExpiresIn          int    `json:"expires_in"`
}

// GetAccessToken returns a valid token for appKey, issuing one when missing or near expiry
func (c *AuthClient) GetAccessToken(ctx context.Context, appKey, appSecret string) (string, error) {
	if token, ok := c.cached(appKey); ok {
		return token, nil
	}

	v, err, _ := c.sf.Do(appKey, func() (interface{}, error) {
		// 대기 중 다른 요청이 이미 발급했을 수 있음
		if token, ok := c.cached(appKey); ok {
			return token, nil
		}
		return c.issue(ctx, appKey, appSecret)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *AuthClient) cached(appKey string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tokens[appKey]
	if !ok || t.accessToken == "" {
		return "", false
	}

	now := c.now()
	if now.Before(t.expiresAt.Add(-TokenRefreshMargin)) {
		return t.accessToken, true
	}

	// 재발급 제한 중이면 아직 만료 전인 토큰을 그대로 사용
	if now.Before(t.holdUntil) && now.Before(t.expiresAt) {
		return t.accessToken, true
	}
	return "", false
}

func (c *AuthClient) issue(ctx context.Context, appKey, appSecret string) (string, error) {
	c.mu.Lock()
	if t, ok := c.tokens[appKey]; ok && c.now().Before(t.holdUntil) {
		hold := t.holdUntil
		c.mu.Unlock()
		return "", fmt.Errorf("%w: token refresh on hold until %s", ErrRateLimited, hold.Format(time.RFC3339))
	}
	c.mu.Unlock()

	bodyBytes, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     appKey,
		"appsecret":  appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/tokenP", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isEGW00133(string(respBody)) {
			c.hold(appKey)
			log.Warn().Str("app_key", maskKey(appKey)).Msg("KIS token rate limited, holding refresh")
		}
		return "", fmt.Errorf("%w: token status=%d body=%s", ErrAPI, resp.StatusCode, string(respBody))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAPI)
	}

	expiresAt := c.expiry(tokenResp)

	c.mu.Lock()
	c.tokens[appKey] = &cachedToken{accessToken: tokenResp.AccessToken, expiresAt: expiresAt}
	c.mu.Unlock()

	log.Info().
		Str("app_key", maskKey(appKey)).
		Time("expires_at", expiresAt).
		Msg("KIS access token issued")

	return tokenResp.AccessToken, nil
}

// expiry prefers expires_in, then the KST timestamp, then 24h
func (c *AuthClient) expiry(tr TokenResponse) time.Time {
	now := c.now()
	if tr.ExpiresIn > 0 {
		return now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if tr.AccessTokenExpired != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", tr.AccessTokenExpired, kst); err == nil {
			return t
		}
	}
	return now.Add(defaultTokenTTL)
}

func (c *AuthClient) hold(appKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tokens[appKey]
	if !ok {
		t = &cachedToken{}
		c.tokens[appKey] = t
	}
	t.holdUntil = c.now().Add(rateLimitHold)
}

// ClearToken drops the cached token for appKey (all app keys when empty)
func (c *AuthClient) ClearToken(appKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if appKey == "" {
		c.tokens = make(map[string]*cachedToken)
		return
	}
	delete(c.tokens, appKey)
}

// isEGW00133 checks if the error is EGW00133 (rate limit)
func isEGW00133(body string) bool {
	return strings.Contains(body, "EGW00133") || strings.Contains(body, "1분당 1회")
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}

var kst = time.FixedZone("KST", 9*60*60)
