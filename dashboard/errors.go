package dashboard

import "errors"

// Sentinel errors for repository operations.
var (
	ErrNotFound   = errors.New("dashboard: not found")
	ErrValidation = errors.New("dashboard: validation error")
)

// ValidationError describes a rejected input. It matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Msg
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
