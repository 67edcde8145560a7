package bankclient

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMaxAmount is the monetary ceiling applied when no explicit
	// configuration overrides it.
	DefaultMaxAmount = 1_000_000

	// MaxDescriptionLength bounds free-text fields after sanitization.
	MaxDescriptionLength = 500
)

var accountIDPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// textDenylist removes characters with injection potential from free text.
var textDenylist = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")

// SanitizeAccountID trims and upper-cases raw and requires the result to be
// strictly alphanumeric. The fixed alphabet removes injection surface by
// construction, independent of any escaping the transport performs.
func SanitizeAccountID(raw string) (string, error) {
	sanitized := strings.ToUpper(strings.TrimSpace(raw))
	if sanitized == "" {
		return "", newClientError(CodeInvalidAccount, "account ID cannot be empty", nil)
	}
	if !accountIDPattern.MatchString(sanitized) {
		return "", newClientError(CodeInvalidAccount,
			"account ID contains invalid characters, only alphanumeric characters allowed", nil)
	}
	return sanitized, nil
}

// ValidateAmount checks that amount is a positive number no larger than max
// and returns it rounded to 2 decimal places, half away from zero. A max of
// zero selects DefaultMaxAmount.
func ValidateAmount(amount, max float64) (float64, error) {
	if max == 0 {
		max = DefaultMaxAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, newClientError(CodeInvalidAmount, "amount must be a finite number", nil)
	}
	if amount <= 0 {
		return 0, newClientError(CodeInvalidAmount, "amount must be positive", nil)
	}
	if amount > max {
		return 0, newClientError(CodeAmountTooLarge,
			fmt.Sprintf("amount exceeds maximum limit of %.2f", max), nil)
	}

	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded, nil
}

// SanitizeText trims raw, strips the denylisted characters (< > " ' &) and
// truncates to maxLen runes. A maxLen of zero selects MaxDescriptionLength.
// Free-text fields are optional, so sanitization never fails.
func SanitizeText(raw string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = MaxDescriptionLength
	}
	sanitized := textDenylist.Replace(strings.TrimSpace(raw))
	runes := []rune(sanitized)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return sanitized
}

// NewTransferRequest builds a TransferRequest through validation: account IDs
// are sanitized, the amount is range-checked and rounded to 2 decimal places
// and the description is sanitized. An invalid TransferRequest cannot be
// constructed through this path.
func NewTransferRequest(fromAccount, toAccount string, amount float64, description string) (TransferRequest, error) {
	from, err := SanitizeAccountID(fromAccount)
	if err != nil {
		return TransferRequest{}, err
	}
	to, err := SanitizeAccountID(toAccount)
	if err != nil {
		return TransferRequest{}, err
	}
	validated, err := ValidateAmount(amount, 0)
	if err != nil {
		return TransferRequest{}, err
	}

	return TransferRequest{
		FromAccount: from,
		ToAccount:   to,
		Amount:      validated,
		Description: SanitizeText(description, MaxDescriptionLength),
	}, nil
}
