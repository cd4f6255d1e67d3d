package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Leetly gateway
var (
	// Session errors
	ErrNoSession           = errors.New("no session")
	ErrInvalidSessionToken = errors.New("invalid session token")

	// Refresh errors
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrRefreshRejected = errors.New("refresh rejected by provider")
	ErrLogoutRejected  = errors.New("logout rejected by provider")

	// Auth flow errors
	ErrStateNotFound = errors.New("auth flow state not found")

	// Lookup errors
	ErrProblemNotFound = errors.New("problem not found")
	ErrInvalidProblem  = errors.New("invalid problem number or URL")

	// Configuration errors
	ErrMissingIssuer        = errors.New("issuer URL is not configured")
	ErrMissingClientID      = errors.New("client ID is not configured")
	ErrMissingSessionSecret = errors.New("session secret is not configured")
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
