package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidCredentials means the API rejected the username or password.
	ErrInvalidCredentials = errors.New("login failed, check your credentials")
	// ErrProfileUnavailable means login succeeded but the identity could not be loaded.
	ErrProfileUnavailable = errors.New("login succeeded, but could not load user info")
)

// AuthError is returned when a login does not produce an identity.
// Reason is ErrInvalidCredentials or ErrProfileUnavailable.
type AuthError struct {
	Username string
	Reason   error
	Cause    error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason.Error()
}

func (e *AuthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

// FetchError is returned when a call to the inventory API fails on the network
// or with a non-2xx status.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError is returned for invalid input. It is raised before any
// network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// validationError converts the first failure reported by validator into a
// ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "input", Message: err.Error()}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "must not be empty"
	case "gt":
		msg = "must be greater than " + fe.Param()
	case "gte":
		msg = "must be at least " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "startswith":
		msg = "must start with " + fe.Param()
	default:
		msg = "failed on the '" + fe.Tag() + "' rule"
	}
	return &ValidationError{Field: fieldName(fe), Message: msg}
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return "input"
	}
	return strings.ToLower(f[:1]) + f[1:]
}
