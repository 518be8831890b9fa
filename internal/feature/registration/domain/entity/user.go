// Package entity defines the domain entities for the registration feature.
package entity

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"registration_backend/internal/feature/registration/domain"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusPending is the state right after registration, before the code is confirmed.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is terminal.
	UserStatusActive UserStatus = "active"
)

// ParseUserStatus converts a stored value into a UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case UserStatusPending, UserStatusActive:
		return st, nil
	default:
		return "", fmt.Errorf("%w: user status %q", domain.ErrUnknownStatus, s)
	}
}

const maxEmailLength = 255

var validate = validator.New()

// User represents a registered account.
// Values are treated as immutable; state transitions return an updated copy.
type User struct {
	// ID is the internal storage key. It is never exposed to clients.
	ID uint

	// PublicID is the identifier handed out to clients.
	PublicID PublicID

	// Email is stored trimmed and lowercased, unique across all users.
	Email string

	// PasswordHash is the opaque output of the password hasher.
	PasswordHash string `json:"-"`

	Status UserStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address format after normalization.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidEmail, maxEmailLength)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.ErrInvalidEmail
	}
	return nil
}

// NewUser creates a pending user with a freshly generated public id.
func NewUser(email, passwordHash string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	publicID, err := NewPublicID()
	if err != nil {
		return nil, err
	}
	return &User{
		PublicID:     publicID,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive reports whether the account finished activation.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Activate returns an active copy of the user.
func (u *User) Activate(now time.Time) (*User, error) {
	if u.IsActive() {
		return nil, domain.ErrAlreadyActive
	}
	activated := *u
	activated.Status = UserStatusActive
	activated.UpdatedAt = now
	return &activated, nil
}

// LogValue keeps the password hash out of structured logs.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("public_id", u.PublicID.String()),
		slog.String("status", string(u.Status)),
	)
}
