package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// InvalidKeyError represents a key that could not be decoded.
type InvalidKeyError struct {
	Value string
}

func (e InvalidKeyError) Error() string {
	if e.Value == "" {
		return "invalid key"
	}
	return fmt.Sprintf("invalid key %q", e.Value)
}

func (e InvalidKeyError) Is(target error) bool {
	_, ok := target.(InvalidKeyError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidKeyError)
	return ok
}

// ErrInvalidKey is the sentinel error for malformed keys.
var ErrInvalidKey = InvalidKeyError{}

// ValidationError represents a required field that was empty after
// trimming. It drives a redirect, never a server error.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed"
	}
	return fmt.Sprintf("%s must not be empty", e.Field)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for empty required fields.
var ErrValidation = ValidationError{}
