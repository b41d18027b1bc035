package helper

import (
	"errors"
	"fmt"
	"strings"
)

// Error wraps an original error with the trace of operations it passed through.
type Error struct {
	Original error
	Trace    []string
}

// Error returns the trace joined from outermost to innermost operation followed by the original error.
func (e Error) Error() string {
	trace := make([]string, len(e.Trace))
	for i, t := range e.Trace {
		trace[len(e.Trace)-1-i] = t
	}
	return fmt.Sprintf("%s: %v", strings.Join(trace, ": "), e.Original)
}

// Unwrap returns the original error so errors.Is and errors.As see through the trace.
func (e Error) Unwrap() error {
	return e.Original
}

// NewError adds a trace entry to an error.
// If the error already is an Error the trace gets extended instead of nested.
func NewError(trace string, original error) error {
	var err Error
	if errors.As(original, &err) {
		newTrace := make([]string, len(err.Trace), len(err.Trace)+1)
		copy(newTrace, err.Trace)
		return Error{
			Original: err.Original,
			Trace:    append(newTrace, trace),
		}
	}

	return Error{
		Original: original,
		Trace:    []string{trace},
	}
}
