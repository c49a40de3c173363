// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidInput            = errors.New("invalid input provided")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrOutOfStock              = errors.New("product is out of stock")
	ErrUserNotFound            = errors.New("user not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrPaymentNotFound         = errors.New("payment intent not found")
	ErrDuplicateEntry          = errors.New("duplicate entry")
	ErrInvalidStatus           = errors.New("invalid order status transition")
	ErrCodeGenerationExhausted = errors.New("could not generate unique order code")
	ErrProviderUnavailable     = errors.New("payment provider unavailable")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
