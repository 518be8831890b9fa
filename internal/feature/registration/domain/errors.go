// Package domain defines domain-level errors for the registration feature.
package domain

import "errors"

// Domain errors raised by the registration entities.
// They describe broken business rules and are reported to clients as-is.
var (
	// ErrInvalidEmail indicates that the email address failed format validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrAlreadyActive indicates an attempt to activate a user that is already active.
	ErrAlreadyActive = errors.New("user is already active")

	// ErrCodeExpired indicates that the activation code passed its expiry or was superseded.
	ErrCodeExpired = errors.New("activation code has expired")

	// ErrCodeAlreadyUsed indicates that the activation code was already consumed.
	ErrCodeAlreadyUsed = errors.New("activation code has already been used")

	// ErrMalformedCode indicates that an activation code value is not a numeric string.
	ErrMalformedCode = errors.New("activation code must contain only digits")

	// ErrInvalidPublicID indicates that a public identifier could not be parsed.
	ErrInvalidPublicID = errors.New("invalid public id")

	// ErrUnknownStatus indicates a stored status value outside the known set.
	ErrUnknownStatus = errors.New("unknown status")
)
