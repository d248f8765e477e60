package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// Notice server errors. Their text is the error code sent to clients.
var (
	// ErrUnauthorized is returned when an admin token is missing, forged or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadPassword is returned when the admin password does not match.
	ErrBadPassword = errors.New("bad_password")
	// ErrMissingSecret is returned when no admin password is configured.
	ErrMissingSecret = errors.New("missing_env:ADMIN_PASSWORD")
)

// ValidationError reports a rejected field. Message is short enough to be
// shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
