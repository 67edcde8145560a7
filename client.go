package bankclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// Client is a resilient banking API client layering scoped token caching,
// retrying execution, input validation and metrics around the standard
// net/http Client. It is safe for concurrent use.
type Client struct {
	config       ClientConfig
	httpClient   *http.Client
	exec         *executor
	tokens       *tokenCache
	metrics      *MetricsCollector
	stats        *stats
	logger       Logger
	breaker      *gobreaker.CircuitBreaker
	limiter      *rateLimiter
	requestIDGen func() string
	useZapLogger bool
}

// New constructs a Client from the provided functional options. The
// configuration is validated once here; an invalid Client cannot be
// constructed.
func New(options ...Option) (*Client, error) {
	c := &Client{
		config:       defaultConfig(),
		stats:        &stats{},
		requestIDGen: func() string { return uuid.NewString() },
	}

	for _, option := range options {
		option(c)
	}

	c.config.BaseURL = strings.TrimRight(c.config.BaseURL, "/")
	if err := c.config.validate(); err != nil {
		return nil, err
	}

	if c.useZapLogger && c.logger == nil {
		zapCore, err := newDefaultZapLogger(c.config.LogLevel)
		if err != nil {
			return nil, newClientError(CodeConfig, "failed to build zap logger", err)
		}
		c.logger = NewZapLogger(zapCore)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   c.config.ConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 30,
				IdleConnTimeout:     60 * time.Second,
			},
		}
	}

	c.exec = &executor{
		httpClient:     c.httpClient,
		maxRetries:     c.config.MaxRetries,
		baseDelay:      c.config.RetryDelayBase,
		maxBackoff:     c.config.MaxBackoff,
		jitter:         c.config.Jitter,
		attemptTimeout: c.config.RequestTimeout,
		breaker:        c.breaker,
		limiter:        c.limiter,
		metrics:        c.metrics,
		logger:         c.logger,
	}
	c.tokens = newTokenCache(c.httpClient, c.config, c.metrics, c.logger)

	if c.logger != nil {
		c.logger.Info("banking client initialized", "baseURL", c.config.BaseURL)
	}
	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// ValidateAccount checks whether accountID exists and is active. An unknown
// account (HTTP 404) is a valid business outcome reported with IsValid=false
// and Status="NOT_FOUND", not an error. When useAuth is set a bearer token is
// attached best-effort: a missing token never aborts the call.
func (c *Client) ValidateAccount(ctx context.Context, accountID string, useAuth bool) (*AccountValidationResult, error) {
	sanitized, err := SanitizeAccountID(accountID)
	if err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodGet, "/accounts/validate/"+sanitized, nil)
	if useAuth {
		c.attachToken(ctx, req, ScopeEnquiry)
	}

	begin := c.stats.recordStart()
	resp, err := c.exec.execute(ctx, req)
	if err != nil {
		c.stats.recordEnd(begin, false)
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var result AccountValidationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			c.stats.recordEnd(begin, false)
			return nil, newClientError(CodeValidationError, "malformed validation response", err)
		}
		if result.AccountID == "" {
			result.AccountID = sanitized
		}
		c.stats.recordEnd(begin, true)
		if c.logger != nil {
			c.logger.Info("account validated", "accountID", sanitized, "isValid", result.IsValid)
		}
		return &result, nil

	case http.StatusNotFound:
		// Expected business outcome; counted as neither success nor failure.
		if c.logger != nil {
			c.logger.Warn("account not found", "accountID", sanitized)
		}
		return &AccountValidationResult{AccountID: sanitized, IsValid: false, Status: "NOT_FOUND"}, nil

	default:
		c.stats.recordEnd(begin, false)
		return nil, c.statusError(CodeValidationError,
			fmt.Sprintf("account validation failed with status %d", resp.StatusCode), resp, req)
	}
}

// GetAccountBalance retrieves the balance for accountID. Unlike validation
// there is no 404 special case: any non-200 response is a BALANCE_ERROR.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string, useAuth bool) (*AccountBalance, error) {
	sanitized, err := SanitizeAccountID(accountID)
	if err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodGet, "/accounts/balance/"+sanitized, nil)
	if useAuth {
		c.attachToken(ctx, req, ScopeEnquiry)
	}

	begin := c.stats.recordStart()
	resp, err := c.exec.execute(ctx, req)
	if err != nil {
		c.stats.recordEnd(begin, false)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.stats.recordEnd(begin, false)
		return nil, c.statusError(CodeBalanceError,
			fmt.Sprintf("balance retrieval failed with status %d", resp.StatusCode), resp, req)
	}

	var balance AccountBalance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		c.stats.recordEnd(begin, false)
		return nil, newClientError(CodeBalanceError, "malformed balance response", err)
	}
	if balance.AccountID == "" {
		balance.AccountID = sanitized
	}
	c.stats.recordEnd(begin, true)
	if c.logger != nil {
		c.logger.Info("retrieved balance", "accountID", sanitized, "amount", balance.Amount)
	}
	return &balance, nil
}

// TransferFunds moves funds between two accounts. Both endpoints are
// pre-validated concurrently (unauthenticated informational checks) before
// the transfer is committed; when both are invalid the source account error
// wins. A requested-but-unavailable token degrades the transfer to an
// unauthenticated attempt rather than aborting: the server makes the final
// authorization decision.
func (c *Client) TransferFunds(ctx context.Context, request TransferRequest, useAuth bool) (*TransferResult, error) {
	fromAccount, err := SanitizeAccountID(request.FromAccount)
	if err != nil {
		return nil, err
	}
	toAccount, err := SanitizeAccountID(request.ToAccount)
	if err != nil {
		return nil, err
	}
	amount, err := ValidateAmount(request.Amount, c.config.MaxAmount)
	if err != nil {
		return nil, err
	}
	description := SanitizeText(request.Description, MaxDescriptionLength)

	fromResult, toResult, err := c.preValidateAccounts(ctx, fromAccount, toAccount)
	if err != nil {
		return nil, err
	}
	if !fromResult.IsValid {
		return nil, newClientError(CodeInvalidSourceAccount, "invalid source account: "+fromAccount, nil)
	}
	if !toResult.IsValid {
		return nil, newClientError(CodeInvalidDestinationAccount, "invalid destination account: "+toAccount, nil)
	}

	payload, err := json.Marshal(TransferRequest{
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return nil, newClientError(CodeTransferError, "failed to encode transfer payload", err)
	}

	req := c.newRequest(http.MethodPost, "/transfer", payload)
	if useAuth {
		if ok := c.attachToken(ctx, req, ScopeTransfer); ok {
			if c.logger != nil {
				c.logger.Info("using JWT authentication for transfer")
			}
		} else if c.logger != nil {
			c.logger.Warn("authentication requested but token unavailable, proceeding unauthenticated")
		}
	}

	if c.logger != nil {
		c.logger.Info("initiating transfer", "fromAccount", fromAccount, "toAccount", toAccount, "amount", amount)
	}

	begin := c.stats.recordStart()
	resp, err := c.exec.execute(ctx, req)
	if err != nil {
		c.stats.recordEnd(begin, false)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.stats.recordEnd(begin, false)
		return nil, c.statusError(CodeTransferError,
			fmt.Sprintf("transfer failed with status %d", resp.StatusCode), resp, req)
	}

	var result TransferResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.stats.recordEnd(begin, false)
		return nil, newClientError(CodeTransferError, "malformed transfer response", err)
	}
	c.stats.recordEnd(begin, true)
	if c.logger != nil {
		c.logger.Info("transfer successful", "transactionID", result.TransactionID)
	}
	return &result, nil
}

// preValidateAccounts looks up both endpoints concurrently. Interpretation is
// deterministic on join: the source account outcome is always examined first,
// so tests see a stable error precedence even though the lookups race.
func (c *Client) preValidateAccounts(ctx context.Context, fromAccount, toAccount string) (*AccountValidationResult, *AccountValidationResult, error) {
	var fromResult, toResult *AccountValidationResult
	var fromErr, toErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fromResult, fromErr = c.ValidateAccount(gctx, fromAccount, false)
		return fromErr
	})
	g.Go(func() error {
		toResult, toErr = c.ValidateAccount(gctx, toAccount, false)
		return toErr
	})
	// The group error is deliberately ignored: both outcomes were captured
	// and the source side must win when both legs failed.
	_ = g.Wait()

	if fromErr != nil {
		return nil, nil, fromErr
	}
	if toErr != nil {
		return nil, nil, toErr
	}
	return fromResult, toResult, nil
}

// GetTransactionHistory fetches the transaction records for accountID. This
// operation requires authentication: a missing token is fatal, unlike
// everywhere else in the client.
func (c *Client) GetTransactionHistory(ctx context.Context, accountID string) ([]Transaction, error) {
	sanitized, err := SanitizeAccountID(accountID)
	if err != nil {
		return nil, err
	}

	token, ok := c.tokens.obtainToken(ctx, ScopeEnquiry)
	if !ok {
		return nil, newClientError(CodeAuthRequired, "authentication required for transaction history", nil)
	}

	req := c.newRequest(http.MethodGet, "/transactions/history?accountId="+url.QueryEscape(sanitized), nil)
	req.header.Set("Authorization", "Bearer "+token)

	begin := c.stats.recordStart()
	resp, err := c.exec.execute(ctx, req)
	if err != nil {
		c.stats.recordEnd(begin, false)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.stats.recordEnd(begin, false)
		code := CodeHistoryError
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			code = CodeAuthRequired
		}
		return nil, c.statusError(code,
			fmt.Sprintf("history retrieval failed with status %d", resp.StatusCode), resp, req)
	}

	var history []Transaction
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		c.stats.recordEnd(begin, false)
		return nil, newClientError(CodeHistoryError, "malformed history response", err)
	}
	c.stats.recordEnd(begin, true)
	if c.logger != nil {
		c.logger.Info("retrieved transaction history", "accountID", sanitized, "records", len(history))
	}
	return history, nil
}

// PerformHealthCheck exercises the validate endpoint with the configured
// probe account and measures the round trip. It never returns an error;
// failures are captured in the result.
func (c *Client) PerformHealthCheck(ctx context.Context) HealthCheckResult {
	start := time.Now()

	_, err := c.ValidateAccount(ctx, c.config.ProbeAccount, false)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return HealthCheckResult{
			Healthy:        false,
			Status:         "ERROR",
			ResponseTimeMs: elapsed,
			Message:        err.Error(),
		}
	}
	return HealthCheckResult{
		Healthy:        true,
		Status:         "OK",
		ResponseTimeMs: elapsed,
		Message:        "validation endpoint responsive",
	}
}

// GetPerformanceStats returns an on-demand snapshot of the request counters.
func (c *Client) GetPerformanceStats() PerformanceMetrics {
	return c.stats.snapshot()
}

// CacheStatistics reports the token cache population.
func (c *Client) CacheStatistics() CacheStats {
	return c.tokens.stats()
}

// ClearCache empties the token cache.
func (c *Client) ClearCache() {
	c.tokens.clear()
	if c.logger != nil {
		c.logger.Debug("all caches cleared")
	}
}

// Shutdown clears caches and releases idle connections. The Client must not
// be used afterwards.
func (c *Client) Shutdown() {
	c.tokens.clear()
	c.httpClient.CloseIdleConnections()
	if c.logger != nil {
		c.logger.Info("banking client shutdown completed")
	}
}

func (c *Client) newRequest(method, path string, body []byte) *apiRequest {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	return &apiRequest{
		method:    method,
		url:       c.config.BaseURL + path,
		body:      body,
		header:    header,
		requestID: c.requestIDGen(),
	}
}

// attachToken adds a bearer token for scope when one can be acquired and
// reports whether it did. Absence of a token never aborts the caller.
func (c *Client) attachToken(ctx context.Context, req *apiRequest, scope string) bool {
	token, ok := c.tokens.obtainToken(ctx, scope)
	if !ok {
		return false
	}
	req.header.Set("Authorization", "Bearer "+token)
	return true
}

// statusError builds a ClientError from a non-retryable HTTP response,
// preserving the raw status and body for diagnostics.
func (c *Client) statusError(code, message string, resp *http.Response, req *apiRequest) *ClientError {
	clientErr := newClientError(code, message, nil)
	clientErr.StatusCode = resp.StatusCode
	clientErr.Body = drainBody(resp)
	clientErr.RequestID = req.requestID
	clientErr.Method = req.method
	clientErr.URL = req.url
	if c.logger != nil {
		c.logger.Error(message, "requestID", req.requestID, "status", resp.StatusCode)
	}
	return clientErr
}
