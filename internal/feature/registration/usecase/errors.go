// Package usecase implements the business logic for the registration feature.
package usecase

import (
	"errors"
	"fmt"

	"registration_backend/internal/feature/registration/domain"
)

var (
	// ErrUserNotFound is returned when no user matches the given email or public id.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyRegistered is returned when the normalized email is already taken.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrCodeNotFound is returned when the user has never been issued an activation code.
	ErrCodeNotFound = errors.New("activation code not found")

	// ErrInvalidCode is returned when the submitted code does not match the latest issued code.
	ErrInvalidCode = errors.New("invalid activation code")

	// ErrWeakPassword is returned when the password hasher's policy rejects the plaintext.
	ErrWeakPassword = errors.New("password does not meet the password policy")

	// ErrInvalidCredentials is returned when an email/password pair cannot be authenticated.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInfrastructure is returned when a storage, hashing or token adapter fails.
	// The underlying error is kept in the message only.
	ErrInfrastructure = errors.New("infrastructure failure")
)

// reportable は呼び出し元へそのまま返してよいエラーの一覧です。
var reportable = []error{
	domain.ErrInvalidEmail,
	domain.ErrAlreadyActive,
	domain.ErrCodeExpired,
	domain.ErrCodeAlreadyUsed,
	ErrUserNotFound,
	ErrEmailAlreadyRegistered,
	ErrCodeNotFound,
	ErrInvalidCode,
	ErrWeakPassword,
	ErrInvalidCredentials,
}

// infraError はアダプター由来のエラーを ErrInfrastructure で包みます。
// 元のエラーはメッセージにのみ残し、errors.Is/As では辿れないようにします。
func infraError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInfrastructure, op, err)
}

// translate は既知のエラー種別をそのまま通し、それ以外を infraError に変換します。
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range reportable {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, ErrInfrastructure) {
		return err
	}
	return infraError(op, err)
}
