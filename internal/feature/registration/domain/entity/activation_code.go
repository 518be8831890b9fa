package entity

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"registration_backend/internal/feature/registration/domain"
)

// ActivationCodeStatus is the lifecycle state of an activation code.
type ActivationCodeStatus string

const (
	CodeStatusPending ActivationCodeStatus = "pending"
	CodeStatusUsed    ActivationCodeStatus = "used"
	// CodeStatusExpired marks a code superseded by a newer one.
	// Codes past expires_at keep their stored status; expiry is derived from the clock.
	CodeStatusExpired ActivationCodeStatus = "expired"
)

// ParseActivationCodeStatus converts a stored value into an ActivationCodeStatus.
func ParseActivationCodeStatus(s string) (ActivationCodeStatus, error) {
	switch st := ActivationCodeStatus(s); st {
	case CodeStatusPending, CodeStatusUsed, CodeStatusExpired:
		return st, nil
	default:
		return "", fmt.Errorf("%w: activation code status %q", domain.ErrUnknownStatus, s)
	}
}

// ActivationCode is a short-lived numeric credential sent to the registration email.
type ActivationCode struct {
	ID        uint
	UserID    uint
	Code      string // digits only, leading zeros preserved
	ExpiresAt time.Time
	Status    ActivationCodeStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IssueActivationCode creates a pending code for the user valid for ttl.
func IssueActivationCode(user *User, code string, now time.Time, ttl time.Duration) (*ActivationCode, error) {
	if !isDigits(code) {
		return nil, domain.ErrMalformedCode
	}
	return &ActivationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(ttl),
		Status:    CodeStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsExpired reports whether now is at or past the expiry instant.
func (c *ActivationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Matches compares the submitted value with the stored code.
func (c *ActivationCode) Matches(submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(submitted)), []byte(c.Code)) == 1
}

// Consume returns a used copy of the code.
func (c *ActivationCode) Consume(now time.Time) (*ActivationCode, error) {
	if c.Status == CodeStatusExpired || c.IsExpired(now) {
		return nil, domain.ErrCodeExpired
	}
	if c.Status == CodeStatusUsed {
		return nil, domain.ErrCodeAlreadyUsed
	}
	used := *c
	used.Status = CodeStatusUsed
	used.UpdatedAt = now
	return &used, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
