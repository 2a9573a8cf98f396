package orchestrators

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks errors caused by bad caller input rather than storage failures.
var ErrInvalidInput = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
