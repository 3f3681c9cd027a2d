package engine

import (
	"errors"
)

// ErrNotFound is returned (wrapped) when a lookup by ID yields no valid
// record. It means the reachable sources hold no such record, not that none
// exists anywhere.
var ErrNotFound = errors.New("not found")

// ErrNoSink is returned by Publish when the engine has nowhere to write.
var ErrNoSink = errors.New("no sink configured")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
