package source

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error reports that no endpoint could answer a fetch. It is distinct from
// an empty result: zero events from a reachable endpoint is a valid answer.
type Error struct {
	// Failures maps endpoint name to the error it returned. Empty when no
	// endpoint was configured.
	Failures map[string]error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Failures) == 0 {
		return "source: no endpoints configured"
	}
	names := e.endpoints()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %v", n, e.Failures[n])
	}
	return fmt.Sprintf("source: all %d endpoints failed: %s", len(names), strings.Join(parts, "; "))
}

// Unwrap returns the endpoint errors ordered by endpoint name, so
// errors.Is(err, context.DeadlineExceeded) works.
func (e *Error) Unwrap() []error {
	names := e.endpoints()
	out := make([]error, len(names))
	for i, n := range names {
		out[i] = e.Failures[n]
	}
	return out
}

func (e *Error) endpoints() []string {
	names := make([]string, 0, len(e.Failures))
	for n := range e.Failures {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IsSourceError reports whether err is (or wraps) a *Error.
func IsSourceError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Failure wraps the error of a single endpoint as a *Error, for sources
// that are not a Multi.
func Failure(endpoint string, err error) *Error {
	return &Error{Failures: map[string]error{endpoint: err}}
}
