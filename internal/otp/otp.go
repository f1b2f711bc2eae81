// Package otp produces the six-digit codes used to confirm email ownership.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generator returns a fresh code. Flows take a Generator so tests can pin codes.
type Generator func() (string, error)

var span = big.NewInt(maxCode - minCode + 1)

// Generate returns a uniformly distributed code in [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

// Fixed returns a Generator that always yields code.
func Fixed(code string) Generator {
	return func() (string, error) { return code, nil }
}
