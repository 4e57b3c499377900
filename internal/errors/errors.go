package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned across package boundaries wraps exactly one of these.
var (
	// ErrValidation marks malformed input. Surfaces as 4xx with its message.
	ErrValidation = errors.New("validation error")
	// ErrAuthentication marks bad credentials or signatures. Surfaces as 401 with its message.
	ErrAuthentication = errors.New("authentication error")
	// ErrUpstream marks a failed or non-2xx call to the commerce platform.
	ErrUpstream = errors.New("upstream error")
	// ErrConfiguration marks a missing secret or token.
	ErrConfiguration = errors.New("configuration error")
	// ErrExpired marks a stale session. Handled locally as a logged out state.
	ErrExpired = errors.New("session expired")

	ErrNotFound = errors.New("not found")
)

// Error carries a message that is safe to show to the caller alongside its kind.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause; the cause is logged, never shown to the caller.
func WithCause(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Message returns the caller facing message of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

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
