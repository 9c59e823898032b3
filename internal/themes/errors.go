package themes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing themes and themes the caller may not see.
	ErrNotFound           = errors.New("theme not found")
	ErrCreationFailed     = errors.New("theme creation failed")
	ErrValidation         = errors.New("invalid theme input")
	ErrNoActiveConnection = errors.New("no active connection")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
