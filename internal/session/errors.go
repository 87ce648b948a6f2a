package session

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("invalid registration")
)

// ValidationError carries the per-field messages of a rejected registration.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Fields.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors renders the field messages for JSON responses.
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		out[field] = err.Error()
	}
	return out
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: validation.Errors{field: errors.New(msg)}}
}
