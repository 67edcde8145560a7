package bankclient

import (
	"errors"
	"fmt"
	"time"
)

// Machine-readable error codes carried by *ClientError.
const (
	CodeInvalidAccount            = "INVALID_ACCOUNT"
	CodeInvalidAmount             = "INVALID_AMOUNT"
	CodeAmountTooLarge            = "AMOUNT_TOO_LARGE"
	CodeValidationError           = "VALIDATION_ERROR"
	CodeBalanceError              = "BALANCE_ERROR"
	CodeInvalidSourceAccount      = "INVALID_SOURCE_ACCOUNT"
	CodeInvalidDestinationAccount = "INVALID_DESTINATION_ACCOUNT"
	CodeTransferError             = "TRANSFER_ERROR"
	CodeHistoryError              = "HISTORY_ERROR"
	CodeAuthRequired              = "AUTH_REQUIRED"
	CodeNetworkError              = "NETWORK_ERROR"
	CodeServerError               = "SERVER_ERROR"
	CodeTimeout                   = "TIMEOUT"
	CodeCircuitOpen               = "CIRCUIT_OPEN"
	CodeRateLimited               = "RATE_LIMITED"
	CodeConfig                    = "CONFIG_ERROR"
)

// Sentinel errors for reliability-layer rejections.
var (
	// ErrCircuitOpen is returned when the circuit breaker is in open state.
	ErrCircuitOpen = errors.New("bankclient: circuit open")

	// ErrRateLimited is returned when a request is denied due to rate limiting.
	ErrRateLimited = errors.New("bankclient: rate limited")
)

// ClientError is the error type produced by every failing operation. It
// carries a machine-readable Code, a human message and, where available, the
// raw server status/body plus request diagnostics.
type ClientError struct {
	Code       string
	Message    string
	Cause      error
	StatusCode int
	Body       string
	RequestID  string
	Method     string
	URL        string
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error codes for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// ErrorCode extracts the code from err, or "" when err is not a *ClientError.
func ErrorCode(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return ""
}

// IsTransient reports whether err represents a failure that might succeed on
// retry: network errors, timeouts, exhausted-retry server errors and
// reliability-layer rejections. Validation and business errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrRateLimited) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Code {
		case CodeNetworkError, CodeTimeout, CodeServerError, CodeCircuitOpen, CodeRateLimited:
			return true
		default:
			return false
		}
	}

	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Code: %s\n", e.Code)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Body != "" {
		info += fmt.Sprintf("Body: %s\n", e.Body)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxRetries)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

func newClientError(code, message string, cause error) *ClientError {
	return &ClientError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
