// internal/util/code.go
package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeAlphabet is the character set of order codes.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// OrderCodeLength gives 36^8 possible codes.
	OrderCodeLength = 8
)

// CodeGenerator produces short random tokens.
type CodeGenerator func() (string, error)

// GenerateCode returns a random token of the given length drawn uniformly
// from CodeAlphabet using crypto/rand.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("generate code: length must be positive, got %d", length)
	}
	max := big.NewInt(int64(len(CodeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: failed to read random source: %w", err)
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// GenerateOrderCode is the default CodeGenerator for orders.
func GenerateOrderCode() (string, error) {
	return GenerateCode(OrderCodeLength)
}
