package bankclient

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeAccountID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantCode string
	}{
		{name: "valid uppercase", input: "ACC1000", expected: "ACC1000"},
		{name: "lowercase normalized", input: "acc1000", expected: "ACC1000"},
		{name: "whitespace trimmed", input: "  acc1000  ", expected: "ACC1000"},
		{name: "empty", input: "", wantCode: CodeInvalidAccount},
		{name: "whitespace only", input: "   ", wantCode: CodeInvalidAccount},
		{name: "sql injection attempt", input: "ACC1000'; DROP TABLE--", wantCode: CodeInvalidAccount},
		{name: "embedded space", input: "ACC 1000", wantCode: CodeInvalidAccount},
		{name: "hyphen rejected", input: "ACC-1000", wantCode: CodeInvalidAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeAccountID(tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		max      float64
		expected float64
		wantCode string
	}{
		{name: "simple", amount: 100, expected: 100},
		{name: "rounds half up", amount: 100.567, expected: 100.57},
		{name: "rounds down", amount: 100.561, expected: 100.56},
		{name: "at default limit", amount: 1_000_000, expected: 1_000_000},
		{name: "over default limit", amount: 1_000_000.01, wantCode: CodeAmountTooLarge},
		{name: "over custom limit", amount: 501, max: 500, wantCode: CodeAmountTooLarge},
		{name: "under custom limit", amount: 499.999, max: 500, expected: 500},
		{name: "zero", amount: 0, wantCode: CodeInvalidAmount},
		{name: "negative", amount: -10, wantCode: CodeInvalidAmount},
		{name: "nan", amount: math.NaN(), wantCode: CodeInvalidAmount},
		{name: "positive infinity", amount: math.Inf(1), wantCode: CodeInvalidAmount},
		{name: "negative infinity", amount: math.Inf(-1), wantCode: CodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAmount(tt.amount, tt.max)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "plain text untouched", input: "lunch money", expected: "lunch money"},
		{name: "strips angle brackets", input: `<script>alert("x")</script>`, expected: "scriptalert(x)/script"},
		{name: "strips quotes and ampersand", input: `it's "fine" & good`, expected: "its fine  good"},
		{name: "trims whitespace", input: "  hello  ", expected: "hello"},
		{name: "empty stays empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input, tt.maxLen))
		})
	}
}

func TestSanitizeTextTruncation(t *testing.T) {
	long := strings.Repeat("a", 600)
	got := SanitizeText(long, 0)
	assert.Len(t, got, MaxDescriptionLength)

	// Truncation counts runes, not bytes.
	unicode := strings.Repeat("ü", 10)
	assert.Equal(t, "üüüüü", SanitizeText(unicode, 5))
}

func TestNewTransferRequest(t *testing.T) {
	request, err := NewTransferRequest(" acc1000 ", "acc2000", 100.567, `pay <b>rent</b>`)
	require.NoError(t, err)

	assert.Equal(t, "ACC1000", request.FromAccount)
	assert.Equal(t, "ACC2000", request.ToAccount)
	assert.InDelta(t, 100.57, request.Amount, 1e-9)
	assert.Equal(t, "pay brent/b", request.Description)
}

func TestNewTransferRequestRejectsBadInput(t *testing.T) {
	_, err := NewTransferRequest("", "ACC2000", 100, "")
	assert.Equal(t, CodeInvalidAccount, ErrorCode(err))

	_, err = NewTransferRequest("ACC1000", "bad id", 100, "")
	assert.Equal(t, CodeInvalidAccount, ErrorCode(err))

	_, err = NewTransferRequest("ACC1000", "ACC2000", -5, "")
	assert.Equal(t, CodeInvalidAmount, ErrorCode(err))

	_, err = NewTransferRequest("ACC1000", "ACC2000", 2_000_000, "")
	assert.Equal(t, CodeAmountTooLarge, ErrorCode(err))
}
