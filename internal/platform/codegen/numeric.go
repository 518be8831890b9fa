// Package codegen generates numeric activation codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Numeric produces uniformly distributed codes of a fixed number of digits,
// keeping leading zeros ("0042").
type Numeric struct {
	length int
	max    *big.Int
	rand   io.Reader
}

// NewNumeric creates a generator for codes of length digits, read from crypto/rand.
func NewNumeric(length int) (*Numeric, error) {
	if length < 1 || length > 18 {
		return nil, fmt.Errorf("code length must be between 1 and 18, got %d", length)
	}
	return &Numeric{
		length: length,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil),
		rand:   rand.Reader,
	}, nil
}

// Generate returns a new code.
func (g *Numeric) Generate() (string, error) {
	n, err := rand.Int(g.rand, g.max)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%0*d", g.length, n.Int64()), nil
}
