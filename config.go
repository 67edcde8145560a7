package bankclient

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ClientConfig holds every tunable of a Client. It is populated through
// functional options, validated once inside New and never mutated afterwards.
type ClientConfig struct {
	BaseURL        string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelayBase time.Duration
	MaxBackoff     time.Duration
	Jitter         float64
	LogLevel       string

	// MaxAmount is the ceiling applied to every monetary amount.
	MaxAmount float64

	// ProbeAccount is the well-known account exercised by PerformHealthCheck.
	ProbeAccount string

	// Credentials sent to the auth endpoint when acquiring scoped tokens.
	Username string
	Password string

	// TokenTTL is assumed when a token carries no exp claim;
	// TokenExpiryBuffer is subtracted from the expiry at read time.
	TokenTTL          time.Duration
	TokenExpiryBuffer time.Duration
}

func defaultConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           "http://localhost:8123",
		ConnectTimeout:    30 * time.Second,
		RequestTimeout:    30 * time.Second,
		MaxRetries:        3,
		RetryDelayBase:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		Jitter:            0.1,
		LogLevel:          "INFO",
		MaxAmount:         1_000_000,
		ProbeAccount:      "ACC1000",
		Username:          "modern_client",
		Password:          "secure_password",
		TokenTTL:          time.Hour,
		TokenExpiryBuffer: 5 * time.Minute,
	}
}

// validate checks the whole configuration and returns a CONFIG_ERROR
// aggregating every violation, or nil.
func (c ClientConfig) validate() error {
	var problems []string

	problems = append(problems, c.validateURLConfig()...)
	problems = append(problems, c.validateTimeoutConfig()...)
	problems = append(problems, c.validateRetryConfig()...)
	problems = append(problems, c.validateDomainConfig()...)

	if len(problems) > 0 {
		return &ClientError{
			Code:    CodeConfig,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}

	return nil
}

func (c ClientConfig) validateURLConfig() []string {
	var problems []string

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return append(problems, fmt.Sprintf("baseURL is not a valid URL: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		problems = append(problems, "baseURL must use the http or https scheme")
	}
	if parsed.Host == "" {
		problems = append(problems, "baseURL must include a host")
	}

	return problems
}

func (c ClientConfig) validateTimeoutConfig() []string {
	var problems []string

	if c.ConnectTimeout <= 0 {
		problems = append(problems, "connectTimeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "requestTimeout must be positive")
	}
	if c.ConnectTimeout > 5*time.Minute {
		problems = append(problems, "connectTimeout > 5m may cause requests to hang for too long")
	}
	if c.RequestTimeout > 5*time.Minute {
		problems = append(problems, "requestTimeout > 5m may cause requests to hang for too long")
	}

	return problems
}

func (c ClientConfig) validateRetryConfig() []string {
	var problems []string

	if c.MaxRetries < 0 {
		problems = append(problems, "maxRetries must be non-negative")
	}
	if c.MaxRetries > 10 {
		problems = append(problems, "maxRetries > 10 may cause excessive resource usage")
	}
	if c.RetryDelayBase <= 0 {
		problems = append(problems, "retryDelayBase must be positive")
	}
	if c.MaxBackoff < c.RetryDelayBase {
		problems = append(problems, "maxBackoff must be greater than or equal to retryDelayBase")
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		problems = append(problems, "jitter must be between 0 and 1")
	}

	return problems
}

func (c ClientConfig) validateDomainConfig() []string {
	var problems []string

	if c.MaxAmount <= 0 {
		problems = append(problems, "maxAmount must be positive")
	}
	if strings.TrimSpace(c.ProbeAccount) == "" {
		problems = append(problems, "probeAccount must not be empty")
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, "logLevel must be DEBUG, INFO, WARN or ERROR")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "tokenTTL must be positive")
	}
	if c.TokenExpiryBuffer < 0 || c.TokenExpiryBuffer >= c.TokenTTL {
		problems = append(problems, "tokenExpiryBuffer must be non-negative and smaller than tokenTTL")
	}

	return problems
}
