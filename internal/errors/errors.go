package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard backend
var (
	// Authentication errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationConflict = errors.New("registration conflict")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrWeakPassword         = errors.New("weak password")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshInvalid      = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Transport errors
	ErrNetwork          = errors.New("network failure")
	ErrUnexpectedStatus = errors.New("unexpected status")

	// Browser/session errors
	ErrNoBrowsingContext = errors.New("no browsing context")
	ErrInvalidState      = errors.New("invalid state parameter")
	ErrInvalidNonce      = errors.New("invalid nonce")
	ErrNotConfigured     = errors.New("not configured")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
