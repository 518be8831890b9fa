// Package security provides password hashing for the registration feature.
package security

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"registration_backend/internal/feature/registration/usecase"
)

// bcrypt only looks at the first 72 bytes of its input.
const bcryptMaxBytes = 72

// PasswordPolicy describes the complexity rules a password must meet.
type PasswordPolicy struct {
	MinLength      int
	MaxBytes       int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy requires 8 to 72 bytes with upper, lower, digit and special characters.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:      8,
		MaxBytes:       bcryptMaxBytes,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Validate returns an error wrapping usecase.ErrWeakPassword listing every failed rule.
func (p PasswordPolicy) Validate(password string) error {
	var problems []string

	if n := len([]rune(password)); n < p.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes", p.MaxBytes))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if p.RequireUpper && !upper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if p.RequireLower && !lower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if p.RequireDigit && !digit {
		problems = append(problems, "must contain a digit")
	}
	if p.RequireSpecial && !special {
		problems = append(problems, "must contain a special character")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", usecase.ErrWeakPassword, strings.Join(problems, "; "))
	}
	return nil
}

// BcryptHasher implements usecase.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost   int
	policy PasswordPolicy
}

var _ usecase.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int, policy PasswordPolicy) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost, policy: policy}
}

// Hash checks the policy and hashes the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if err := h.policy.Validate(plaintext); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
