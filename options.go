package bankclient

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WithBaseURL sets the banking API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.config.BaseURL = baseURL
	}
}

// WithConnectTimeout sets the TCP connect timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.ConnectTimeout = d
	}
}

// WithRequestTimeout sets the per-attempt request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.RequestTimeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.config.MaxRetries = n
	}
}

// WithRetryDelayBase sets the base delay for exponential backoff.
func WithRetryDelayBase(d time.Duration) Option {
	return func(c *Client) {
		c.config.RetryDelayBase = d
	}
}

// WithMaxBackoff caps the delay between retries.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.config.MaxBackoff = d
	}
}

// WithJitter sets the jitter factor for backoff (0.0 to 1.0).
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.config.Jitter = f
	}
}

// WithLogLevel sets the log level (DEBUG, INFO, WARN, ERROR).
func WithLogLevel(level string) Option {
	return func(c *Client) {
		c.config.LogLevel = level
	}
}

// WithMaxAmount overrides the monetary ceiling applied by amount validation.
func WithMaxAmount(max float64) Option {
	return func(c *Client) {
		c.config.MaxAmount = max
	}
}

// WithProbeAccount sets the account ID used by PerformHealthCheck.
func WithProbeAccount(accountID string) Option {
	return func(c *Client) {
		c.config.ProbeAccount = accountID
	}
}

// WithCredentials sets the username/password presented to the auth endpoint.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.config.Username = username
		c.config.Password = password
	}
}

// WithTokenTTL sets the expiry assumed for tokens without an exp claim.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.config.TokenTTL = ttl
	}
}

// WithHTTPClient sets a custom HTTP client. The client's Timeout is left
// untouched; per-attempt deadlines come from the request context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger for structured output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithZapLogger enables structured JSON logging through a production zap
// logger honoring the configured log level. A logger supplied via WithLogger
// takes precedence.
func WithZapLogger() Option {
	return func(c *Client) {
		c.useZapLogger = true
	}
}

// WithSimpleLogger enables logging with a plain stderr logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		c.logger = NewSimpleLogger()
	}
}

// WithMetrics enables Prometheus metrics collection on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsRegistry enables metrics collection on the supplied registerer.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(registry)
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithCircuitBreaker enables a circuit breaker in front of every attempt.
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newCircuitBreaker(config)
	}
}

// WithRateLimiter enables a token-bucket rate limiter in front of every attempt.
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.limiter = newRateLimiter(maxTokens, refillRate)
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
// used in logs and error diagnostics.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.requestIDGen = gen
	}
}
