package domain

import (
	"encoding/json"
	"errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("permission denied")
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrDuplicateCheckout = errors.New("this cart was already checked out")
	ErrStatusTransition  = errors.New("order status can only move forward")

	ErrInvalidToken     = errors.New("activation link is invalid")
	ErrEmailTaken       = errors.New("email already used")
	ErrUsernameTaken    = errors.New("username already used")
	ErrEmailMismatch    = errors.New("emails do not match")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrBadCreds         = errors.New("invalid username or password")
	ErrInactive         = errors.New("account is not activated yet")
)

// ValidationError collects per-field violations; the first message recorded
// for a field wins.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (v *ValidationError) Check(ok bool, field, msg string) {
	if ok {
		return
	}
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = msg
	}
}

func (v *ValidationError) HasErrors() bool { return len(v.Fields) > 0 }

// Err returns v as an error, or nil when nothing was violated.
func (v *ValidationError) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	b, _ := json.Marshal(v.Fields)
	return "validation failed: " + string(b)
}

// IsValidation reports whether err carries field violations.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
