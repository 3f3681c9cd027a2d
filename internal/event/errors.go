package event

import (
	"errors"
	"fmt"
)

// ValidationErrorCode categorizes integrity failures.
type ValidationErrorCode string

const (
	// ErrCodeTamperedID indicates the stated ID does not match the
	// recomputed canonical ID.
	ErrCodeTamperedID ValidationErrorCode = "TAMPERED_ID"

	// ErrCodeBadSignature indicates the signature does not verify against
	// the stated ID and author key.
	ErrCodeBadSignature ValidationErrorCode = "BAD_SIGNATURE"
)

// ValidationError reports an event that failed its integrity check.
//
// Callers never treat it as fatal: the offending event is excluded from
// projection and everything else proceeds.
type ValidationError struct {
	Code    ValidationErrorCode
	EventID string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (event=%s): %v", e.Code, e.Message, e.EventID, e.Err)
	}
	return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventID)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationCode returns the code of a wrapped *ValidationError, or "".
func ValidationCode(err error) ValidationErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

func tamperedID(stated, computed string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeTamperedID,
		EventID: stated,
		Message: fmt.Sprintf("stated id does not match canonical id %s", computed),
	}
}

func badSignature(id string, err error) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeBadSignature,
		EventID: id,
		Message: "signature does not verify",
		Err:     err,
	}
}
