package layering

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is returned for malformed package patterns.
	ErrInvalidPattern = errors.New("invalid package pattern")

	// ErrUnknownTag is returned when a rule references a tag the classifier does not define.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrInvalidRule is returned for rules missing an ID or one of their tag sets.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrViolations is wrapped by ViolationError.
	ErrViolations = errors.New("layering violations found")
)

// ViolationError is returned by Result.Err when a check failed.
type ViolationError struct {
	Count   int
	Message string
}

func (e *ViolationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d layering violations found", e.Count)
	}
	return e.Message
}

// Unwrap allows errors.Is(err, ErrViolations).
func (e *ViolationError) Unwrap() error {
	return ErrViolations
}
