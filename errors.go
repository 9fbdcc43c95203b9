package formfill

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a bucket or object does not exist
	ErrNotFound = errors.New("not found")
	// ErrStorage is returned when fetching an object fails
	ErrStorage = errors.New("storage error")
	// ErrValidation is returned when submitted values violate the schema
	ErrValidation = errors.New("validation failed")
	// ErrForm is returned when a template cannot be parsed, filled or saved
	ErrForm = errors.New("form error")
	// ErrConfig is returned when required configuration is missing or invalid
	ErrConfig = errors.New("invalid configuration")
	// ErrInvalidInput is returned when caller input is malformed
	ErrInvalidInput = errors.New("invalid input")
)

// Phase names the pipeline step an error came from.
type Phase string

const (
	PhaseSchema   Phase = "schema"
	PhaseTemplate Phase = "template"
	PhaseFill     Phase = "fill"
)

// PhaseError tags an error with the pipeline phase that produced it.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PhaseOf returns the phase recorded on err, or "" when there is none.
func PhaseOf(err error) Phase {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}

// ValidationError carries the violations of a rejected submission.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		names = append(names, v.Field)
	}
	return fmt.Sprintf("invalid values for fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
