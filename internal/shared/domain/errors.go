package domain

import (
	"errors"
	"fmt"
)

// Errores base; los contextos los envuelven con %w para que la capa HTTP elija el status.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// InvalidInput envuelve err como error de validación.
func InvalidInput(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
