package analyzers

import (
	"errors"
	"fmt"
)

// ErrorClass enum for analyzer failures
type ErrorClass string

const (
	ClassTimeout             ErrorClass = "timeout"
	ClassToolCrashed         ErrorClass = "tool_crashed"
	ClassUnsupportedArtifact ErrorClass = "unsupported_artifact"
)

// Error is a classified analyzer failure. Timeout and ToolCrashed are
// retriable per the orchestrator's policy; UnsupportedArtifact is terminal
// immediately.
type Error struct {
	Analyzer ID
	Class    ErrorClass
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyzer %s: %s: %v", e.Analyzer, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewTimeout(id ID, err error) *Error {
	return &Error{Analyzer: id, Class: ClassTimeout, Err: err}
}

func NewToolCrashed(id ID, err error) *Error {
	return &Error{Analyzer: id, Class: ClassToolCrashed, Err: err}
}

func NewUnsupportedArtifact(id ID, err error) *Error {
	return &Error{Analyzer: id, Class: ClassUnsupportedArtifact, Err: err}
}

// Retriable reports whether the orchestrator may re-attempt after err.
// Unknown errors are treated as tool crashes and retried.
func Retriable(err error) bool {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Class != ClassUnsupportedArtifact
	}
	return true
}

// Classify returns the error class, defaulting to tool_crashed for
// unclassified failures
func Classify(err error) ErrorClass {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Class
	}
	return ClassToolCrashed
}
