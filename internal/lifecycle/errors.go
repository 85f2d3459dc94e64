package lifecycle

import (
	"errors"
	"fmt"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
)

var (
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrInvalidField         = errors.New("invalid field")
)

// ValidationError reports a rejected input field. It unwraps to one of
// ErrMissingRequiredField, ErrUnknownStatus or ErrInvalidField.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &ValidationError{Field: field, Err: ErrMissingRequiredField}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, Err: ErrInvalidField}
}

func invalidTransition(from, to models.Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ParseStatus maps text onto the closed status set.
func ParseStatus(s string) (models.Status, error) {
	status := models.Status(s)
	if !status.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("%q", s), Err: ErrUnknownStatus}
	}
	return status, nil
}
