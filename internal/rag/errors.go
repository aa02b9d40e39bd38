package rag

import "fmt"

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// ErrEmptyQuestion is returned by Ask when the question is empty after
// trimming whitespace.
var ErrEmptyQuestion = &ValidationError{Field: "question", Message: "must not be empty"}
