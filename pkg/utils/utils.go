package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultAccountNumberLength is the number of digits in a generated account number.
const DefaultAccountNumberLength = 20

// NumberGenerator produces candidate account numbers.
type NumberGenerator interface {
	Generate() (string, error)
}

// AccountNumberGenerator draws fixed-length numeric strings uniformly from crypto/rand.
type AccountNumberGenerator struct {
	length int
}

// NewAccountNumberGenerator creates a generator of length-digit numbers.
// A non-positive length falls back to DefaultAccountNumberLength.
func NewAccountNumberGenerator(length int) *AccountNumberGenerator {
	if length <= 0 {
		length = DefaultAccountNumberLength
	}
	return &AccountNumberGenerator{length: length}
}

// Generate returns a new candidate number. Leading zeros are kept.
func (g *AccountNumberGenerator) Generate() (string, error) {
	return GenerateAccountNumber(g.length)
}

// GenerateAccountNumber returns a random numeric string of exactly length digits.
func GenerateAccountNumber(length int) (string, error) {
	buf := make([]byte, length)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

// ValidateAccountNumber reports whether s is a numeric string of the given length.
func ValidateAccountNumber(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
