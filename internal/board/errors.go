package board

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by Manager mutations issued before Load completed.
var ErrNotLoaded = errors.New("board not loaded")

// ValidationError reports rejected user input. The command that produced it
// had no effect on the board.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation returns true if err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a failed snapshot write. Managers log it and keep the
// in-memory board authoritative; it is never returned to callers.
type PersistenceError struct {
	BoardID string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist board '%s': %v", e.BoardID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
