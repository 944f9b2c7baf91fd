package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIdentifierNotFound means no account matched the email/phone identifier.
	ErrIdentifierNotFound = errors.New("identifier not found")
	// ErrInvalidPassword means the stored hash did not match the candidate.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrDuplicate signals a uniqueness violation on email, phone, or a
	// provider ID. Wrap it in a DuplicateError to name the offending field.
	ErrDuplicate = errors.New("duplicate value")
	// ErrTokenExpired is an otherwise valid token past its expiry.
	// Kept distinct from ErrTokenInvalid so clients know to refresh rather
	// than re-login.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens, and refresh
	// tokens that no longer match the account's active one.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrAccountGone means a cryptographically valid token references an
	// account that no longer exists.
	ErrAccountGone = errors.New("account no longer exists")
	// ErrPINInvalidOrExpired deliberately does not distinguish a wrong PIN
	// from an expired one.
	ErrPINInvalidOrExpired = errors.New("invalid or expired reset token")
	// ErrUnsupportedProvider rejects provider names outside the closed set.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrMailDelivery marks a definitive notification delivery failure.
	ErrMailDelivery = errors.New("mail delivery failed")
)

// DuplicateError names the unique field an account creation or link collided
// on, so handlers can report it back to the client.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// NewDuplicateError builds a field-attributed duplicate error.
func NewDuplicateError(field string) error {
	return &DuplicateError{Field: field}
}

// DuplicateField extracts the offending field from a duplicate error chain,
// or returns empty when the error is not a duplicate.
func DuplicateField(err error) string {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Field
	}
	return ""
}
