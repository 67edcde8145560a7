package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenCacheEntry struct {
	token  string
	expiry time.Time
}

// tokenCache acquires scoped JWTs and caches them per scope. Entries are
// replaced whole under the lock; concurrent callers for one scope may race to
// refresh, in which case the last writer wins and at most a few duplicate
// acquisition calls go out. Authentication failure is advisory: obtainToken
// reports "no token" instead of an error because several operations work
// unauthenticated.
type tokenCache struct {
	mu      sync.RWMutex
	entries map[string]tokenCacheEntry

	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	ttl        time.Duration
	buffer     time.Duration
	timeout    time.Duration
	metrics    *MetricsCollector
	logger     Logger
}

func newTokenCache(httpClient *http.Client, config ClientConfig, metrics *MetricsCollector, logger Logger) *tokenCache {
	return &tokenCache{
		entries:    make(map[string]tokenCacheEntry),
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		username:   config.Username,
		password:   config.Password,
		ttl:        config.TokenTTL,
		buffer:     config.TokenExpiryBuffer,
		timeout:    config.RequestTimeout,
		metrics:    metrics,
		logger:     logger,
	}
}

// obtainToken returns a token for scope and whether one is available. A
// cached entry is served while now < expiry - buffer; otherwise a fresh
// acquisition request is made.
func (tc *tokenCache) obtainToken(ctx context.Context, scope string) (string, bool) {
	tc.mu.RLock()
	entry, found := tc.entries[scope]
	tc.mu.RUnlock()

	if found && time.Now().Before(entry.expiry.Add(-tc.buffer)) {
		if tc.logger != nil {
			tc.logger.Debug("using cached token", "scope", scope)
		}
		tc.metrics.RecordTokenCacheHit(scope)
		return entry.token, true
	}
	tc.metrics.RecordTokenCacheMiss(scope)

	token, ok := tc.acquire(ctx, scope)
	if !ok {
		return "", false
	}

	tc.mu.Lock()
	tc.entries[scope] = tokenCacheEntry{token: token, expiry: tc.expiryOf(token)}
	tc.mu.Unlock()

	return token, true
}

func (tc *tokenCache) acquire(ctx context.Context, scope string) (string, bool) {
	payload, err := json.Marshal(map[string]string{
		"username": tc.username,
		"password": tc.password,
	})
	if err != nil {
		return "", false
	}

	acquireCtx, cancel := context.WithTimeout(ctx, tc.timeout)
	defer cancel()

	url := tc.baseURL + "/authToken?claim=" + scope
	req, err := http.NewRequestWithContext(acquireCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		if tc.logger != nil {
			tc.logger.Error("error obtaining authentication token", "scope", scope, "error", err.Error())
		}
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if tc.logger != nil {
			tc.logger.Error("failed to obtain token", "scope", scope, "status", resp.StatusCode)
		}
		return "", false
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		if tc.logger != nil {
			tc.logger.Error("token response malformed", "scope", scope)
		}
		return "", false
	}

	if tc.logger != nil {
		tc.logger.Info("obtained JWT token", "scope", scope)
	}
	return body.Token, true
}

// expiryOf reads the token's exp claim without verifying the signature (the
// server owns authorization; the claim only drives cache freshness) and falls
// back to the configured TTL when absent or unparseable.
func (tc *tokenCache) expiryOf(token string) time.Time {
	fallback := time.Now().Add(tc.ttl)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}

// clear empties all entries; used for logout and test reset.
func (tc *tokenCache) clear() {
	tc.mu.Lock()
	tc.entries = make(map[string]tokenCacheEntry)
	tc.mu.Unlock()

	if tc.logger != nil {
		tc.logger.Debug("token cache cleared")
	}
}

// stats reports the current cache population.
func (tc *tokenCache) stats() CacheStats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	scopes := make([]string, 0, len(tc.entries))
	for scope := range tc.entries {
		scopes = append(scopes, scope)
	}
	return CacheStats{CachedTokens: len(tc.entries), Scopes: scopes}
}

// ValidTokenStructure reports whether token has the three dot-separated
// segments of a JWT. It does not verify the signature.
func ValidTokenStructure(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return len(strings.Split(token, ".")) == 3
}
