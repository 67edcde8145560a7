package bankclient

import "time"

// Token scopes understood by the auth endpoint.
const (
	ScopeEnquiry  = "enquiry"
	ScopeTransfer = "transfer"
)

// AccountValidationResult is the outcome of an account validation call.
// An unknown account (HTTP 404) is reported here with IsValid=false and
// Status="NOT_FOUND" rather than as an error.
type AccountValidationResult struct {
	AccountID   string `json:"accountId"`
	IsValid     bool   `json:"isValid"`
	AccountType string `json:"accountType,omitempty"`
	Status      string `json:"status,omitempty"`
}

// AccountBalance holds the balance of a single account.
type AccountBalance struct {
	AccountID   string     `json:"accountId"`
	Amount      float64    `json:"balance"`
	Currency    string     `json:"currency"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// TransferRequest describes a fund transfer between two accounts. Values are
// sanitized at construction; build instances with NewTransferRequest only.
type TransferRequest struct {
	FromAccount string  `json:"fromAccount"`
	ToAccount   string  `json:"toAccount"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// TransferResult is the server's answer to a committed transfer.
type TransferResult struct {
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	FromAccount   string     `json:"fromAccount"`
	ToAccount     string     `json:"toAccount"`
	Amount        float64    `json:"amount"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// Transaction is a single entry of an account's transaction history.
type Transaction struct {
	TransactionID string     `json:"transactionId,omitempty"`
	AccountID     string     `json:"accountId,omitempty"`
	Date          string     `json:"date,omitempty"`
	Description   string     `json:"description,omitempty"`
	Amount        float64    `json:"amount"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// PerformanceMetrics is an on-demand snapshot of the client's counters.
// Invariants: SuccessfulRequests+FailedRequests <= TotalRequests and
// SuccessRate = successful/total when total > 0, else 0.
type PerformanceMetrics struct {
	TotalRequests         int64   `json:"totalRequests"`
	SuccessfulRequests    int64   `json:"successfulRequests"`
	FailedRequests        int64   `json:"failedRequests"`
	SuccessRate           float64 `json:"successRate"`
	AverageResponseTimeMs float64 `json:"averageResponseTimeMs"`
}

// HealthCheckResult is the outcome of a health probe. Probe failures are
// captured here; PerformHealthCheck never returns an error.
type HealthCheckResult struct {
	Healthy        bool   `json:"healthy"`
	Status         string `json:"status"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Message        string `json:"message,omitempty"`
}

// CacheStats reports the current token cache population.
type CacheStats struct {
	CachedTokens int      `json:"cachedTokens"`
	Scopes       []string `json:"scopes"`
}

// Option configures a Client at construction time.
type Option func(*Client)
