package project

import (
	"errors"
	"fmt"
)

// StructuralErrorCode categorizes events that are authentic but unusable.
type StructuralErrorCode string

const (
	// ErrCodeRepoUndefined indicates an announcement without a location or name.
	ErrCodeRepoUndefined StructuralErrorCode = "REPO_UNDEFINED"

	// ErrCodeMissingTitle indicates an issue without a title tag.
	ErrCodeMissingTitle StructuralErrorCode = "MISSING_TITLE"

	// ErrCodeMissingName indicates a patch without a name tag.
	ErrCodeMissingName StructuralErrorCode = "MISSING_NAME"

	// ErrCodeMissingReference indicates a comment or status update that does
	// not reference an issue.
	ErrCodeMissingReference StructuralErrorCode = "MISSING_REFERENCE"

	// ErrCodeMalformedContent indicates content that does not decode into
	// the payload the kind requires.
	ErrCodeMalformedContent StructuralErrorCode = "MALFORMED_CONTENT"

	// ErrCodeWrongKind indicates an event handed to the projector for a
	// different kind.
	ErrCodeWrongKind StructuralErrorCode = "WRONG_KIND"

	// ErrCodeBlankField indicates a draft built from blank input.
	ErrCodeBlankField StructuralErrorCode = "BLANK_FIELD"
)

// ReasonUnauthorized is the exclusion reason for a status update whose
// author the policy does not allow. It is not an error: the event stays in
// the log and still shows up anywhere authorization does not apply.
const ReasonUnauthorized = "UNAUTHORIZED"

// StructuralError reports a validated event that is missing a required tag
// or carries undecodable content. Only the affected record is dropped.
type StructuralError struct {
	Code    StructuralErrorCode
	EventID string
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructuralError reports whether err is (or wraps) a *StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// StructuralCode returns the code of a wrapped *StructuralError, or "".
func StructuralCode(err error) StructuralErrorCode {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func structural(code StructuralErrorCode, id, format string, args ...any) *StructuralError {
	return &StructuralError{Code: code, EventID: id, Message: fmt.Sprintf(format, args...)}
}
