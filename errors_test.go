package bankclient

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientErrorMessage(t *testing.T) {
	err := &ClientError{Code: CodeNetworkError, Message: "connection refused"}
	assert.Equal(t, "NETWORK_ERROR: connection refused", err.Error())

	err = &ClientError{
		Code:       CodeServerError,
		Message:    "upstream exploded",
		Cause:      errors.New("boom"),
		RequestID:  "req-1",
		Attempt:    3,
		MaxRetries: 3,
	}
	assert.Equal(t, "[req-1] SERVER_ERROR: upstream exploded (boom) (attempt 3/3)", err.Error())
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := newClientError(CodeTimeout, "request timed out", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestClientErrorIsComparesCodes(t *testing.T) {
	err := newClientError(CodeInvalidAccount, "bad account", nil)
	wrapped := fmt.Errorf("operation failed: %w", err)

	assert.ErrorIs(t, wrapped, &ClientError{Code: CodeInvalidAccount})
	assert.NotErrorIs(t, wrapped, &ClientError{Code: CodeInvalidAmount})
}

func TestErrorCode(t *testing.T) {
	err := newClientError(CodeBalanceError, "no balance", nil)
	assert.Equal(t, CodeBalanceError, ErrorCode(err))
	assert.Equal(t, CodeBalanceError, ErrorCode(fmt.Errorf("wrapped: %w", err)))
	assert.Empty(t, ErrorCode(errors.New("plain")))
	assert.Empty(t, ErrorCode(nil))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		code      string
		transient bool
	}{
		{CodeNetworkError, true},
		{CodeTimeout, true},
		{CodeServerError, true},
		{CodeCircuitOpen, true},
		{CodeRateLimited, true},
		{CodeInvalidAccount, false},
		{CodeInvalidAmount, false},
		{CodeAmountTooLarge, false},
		{CodeAuthRequired, false},
		{CodeTransferError, false},
		{CodeConfig, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := newClientError(tt.code, "x", nil)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.True(t, IsTransient(ErrCircuitOpen))
	assert.True(t, IsTransient(ErrRateLimited))
}

func TestDebugInfo(t *testing.T) {
	err := &ClientError{
		Code:       CodeTransferError,
		Message:    "transfer failed with status 422",
		StatusCode: 422,
		Body:       `{"error":"insufficient funds"}`,
		RequestID:  "req-9",
		Method:     "POST",
		URL:        "http://bank.local/transfer",
		Attempt:    1,
		MaxRetries: 3,
		Timestamp:  time.Now(),
		Duration:   12 * time.Millisecond,
	}

	info := err.DebugInfo()
	assert.Contains(t, info, "Error Code: TRANSFER_ERROR")
	assert.Contains(t, info, "Status Code: 422")
	assert.Contains(t, info, "insufficient funds")
	assert.Contains(t, info, "Request ID: req-9")
	assert.Contains(t, info, "Attempt: 1/3")
}
