package bankclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yapzukai/julius-baer-side-quest/internal/backoff"
)

// errServerStatus marks a 5xx response inside the circuit breaker callback so
// the breaker counts it as a failure while the response stays available for
// classification.
var errServerStatus = errors.New("bankclient: server error status")

// apiRequest describes one logical HTTP exchange. The body is kept as bytes
// so every retry attempt can replay it.
type apiRequest struct {
	method    string
	url       string
	body      []byte
	header    http.Header
	requestID string
}

// executor issues one logical request with bounded retries, exponential
// backoff and per-attempt timeouts. Retry is exclusively a server/network
// resilience mechanism: any response with status < 500 is returned to the
// caller as-is on the first attempt that produces it.
type executor struct {
	httpClient     *http.Client
	maxRetries     int
	baseDelay      time.Duration
	maxBackoff     time.Duration
	jitter         float64
	attemptTimeout time.Duration
	breaker        *gobreaker.CircuitBreaker
	limiter        *rateLimiter
	metrics        *MetricsCollector
	logger         Logger
}

// execute runs the attempt loop. The returned response always carries a
// fully-buffered body, so callers may read it without worrying about the
// attempt deadline.
func (e *executor) execute(ctx context.Context, req *apiRequest) (*http.Response, error) {
	start := time.Now()
	endpoint := endpointFromURL(req.url)

	e.metrics.RecordRequestStart(req.method, endpoint)
	defer e.metrics.RecordRequestEnd(req.method, endpoint)

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; ; attempt++ {
		if e.limiter != nil && !e.limiter.Allow() {
			if e.logger != nil {
				e.logger.Warn("rate limit exceeded", "requestID", req.requestID, "endpoint", endpoint)
			}
			e.metrics.RecordError(CodeRateLimited, req.method, endpoint)
			return nil, e.newError(CodeRateLimited, "rate limit exceeded", ErrRateLimited, req, attempt, 0, "", start)
		}

		if attempt > 0 {
			if e.logger != nil {
				e.logger.Info("retry attempt", "requestID", req.requestID, "attempt", attempt,
					"maxRetries", e.maxRetries, "endpoint", endpoint)
			}
			e.metrics.RecordRetry(req.method, endpoint, attempt)
		}

		resp, err := e.attempt(ctx, req)

		switch {
		case err == nil && resp.StatusCode < 500:
			// Not retryable by definition; the caller inspects the status.
			e.metrics.RecordRequest(req.method, endpoint, resp.StatusCode, time.Since(start))
			return resp, nil

		case err == nil:
			// 5xx: retryable.
			lastResp, lastErr = resp, nil
			e.metrics.RecordError(CodeServerError, req.method, endpoint)

		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			if e.logger != nil {
				e.logger.Warn("circuit breaker open", "requestID", req.requestID, "endpoint", endpoint)
			}
			e.metrics.RecordError(CodeCircuitOpen, req.method, endpoint)
			return nil, e.newError(CodeCircuitOpen, "circuit breaker is open", ErrCircuitOpen, req, attempt, 0, "", start)

		case ctx.Err() != nil:
			// Caller-level cancellation propagates down and prevents further
			// retries, regardless of how the attempt failed.
			e.metrics.RecordError(CodeTimeout, req.method, endpoint)
			return nil, e.newError(CodeTimeout, "request canceled", ctx.Err(), req, attempt, 0, "", start)

		default:
			lastResp, lastErr = nil, err
			if errors.Is(err, context.DeadlineExceeded) {
				e.metrics.RecordError(CodeTimeout, req.method, endpoint)
			} else {
				e.metrics.RecordError(CodeNetworkError, req.method, endpoint)
			}
		}

		if attempt >= e.maxRetries {
			break
		}

		delay := backoff.Exponential(attempt, e.baseDelay, e.maxBackoff, 2.0, e.jitter)
		if e.logger != nil {
			e.logger.Info("scheduling retry", "requestID", req.requestID, "attempt", attempt+1,
				"backoff", delay, "endpoint", endpoint)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, e.newError(CodeTimeout, "request canceled during backoff", ctx.Err(), req, attempt, 0, "", start)
		case <-timer.C:
		}
	}

	// Retries exhausted.
	if lastErr != nil {
		code := CodeNetworkError
		message := "network request failed"
		if errors.Is(lastErr, context.DeadlineExceeded) {
			code = CodeTimeout
			message = "request timed out"
		}
		e.metrics.RecordRequest(req.method, endpoint, 0, time.Since(start))
		return nil, e.newError(code, message, lastErr, req, e.maxRetries, 0, "", start)
	}

	body := drainBody(lastResp)
	e.metrics.RecordRequest(req.method, endpoint, lastResp.StatusCode, time.Since(start))
	return nil, e.newError(CodeServerError,
		fmt.Sprintf("server error after %d retries: status %d", e.maxRetries, lastResp.StatusCode),
		nil, req, e.maxRetries, lastResp.StatusCode, body, start)
}

// attempt issues a single HTTP exchange under its own deadline. The response
// body is consumed before the deadline is released and replayed to the
// caller from memory.
func (e *executor) attempt(ctx context.Context, req *apiRequest) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	do := func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(attemptCtx, req.method, req.url, bytes.NewReader(req.body))
		if err != nil {
			return nil, err
		}
		for key, values := range req.header {
			for _, value := range values {
				httpReq.Header.Add(key, value)
			}
		}

		resp, err := e.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		return bufferResponse(resp)
	}

	if e.breaker == nil {
		return do()
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		resp, err := do()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		// 5xx counted against the breaker; classification happens above.
		return result.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// bufferResponse reads the whole body into memory and closes the network
// stream, so the response survives the attempt deadline.
func bufferResponse(resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func drainBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return string(body)
}

func (e *executor) newError(code, message string, cause error, req *apiRequest,
	attempt, statusCode int, body string, start time.Time) *ClientError {

	return &ClientError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: statusCode,
		Body:       body,
		RequestID:  req.requestID,
		Method:     req.method,
		URL:        req.url,
		Attempt:    attempt,
		MaxRetries: e.maxRetries,
		Timestamp:  time.Now(),
		Duration:   time.Since(start),
	}
}

// endpointFromURL extracts host+path for metric labels.
func endpointFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(parsed.Host)
	if parsed.Path != "" && parsed.Path != "/" {
		builder.WriteString(parsed.Path)
	} else {
		builder.WriteByte('/')
	}
	return builder.String()
}
