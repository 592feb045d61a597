// Package app holds the application services and business logic.
package app

import (
	"errors"
	"fmt"
)

var (
	// ErrAIUnavailable indicates the vision model could not be reached or failed.
	ErrAIUnavailable = errors.New("food recognition is unavailable right now, please try again")
	// ErrAIParse indicates the vision model replied without a usable estimate.
	ErrAIParse = errors.New("could not read a food estimate from that photo, try another one")
)

// ValidationError reports a bad or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
