// internal/util/validate.go
package util

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field limits for catalog records.
const (
	MaxProductTypeLen        = 64
	MaxProductNameLen        = 128
	MaxProductDescriptionLen = 1000
)

// ParseAmount parses a user supplied money amount. It accepts a comma as the
// decimal separator, requires a positive value and at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, raw)
	}
	if err := ValidatePositiveAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidatePositiveAmount rejects non-positive amounts and sub-cent precision.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimal places", ErrInvalidInput)
	}
	return nil
}

// ValidateText checks that a required text field is non-empty and within max runes.
func ValidateText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, max)
	}
	return nil
}
