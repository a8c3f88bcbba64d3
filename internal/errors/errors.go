package errors

import (
	"errors"
	"fmt"
)

// Common error types for the car rental client
var (
	// Session errors
	ErrNoSession        = errors.New("no active session")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrEmptyAccessToken = errors.New("refresh response carried no access token")

	// Credential store errors
	ErrKeyNotFound       = errors.New("key not found")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrCorruptStore      = errors.New("credential store is corrupt")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Booking errors
	ErrInvalidDateRange = errors.New("invalid date range")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
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
