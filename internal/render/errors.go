package render

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Activate for unknown program names.
var ErrNotFound = errors.New("program not found")

// ValidationError reports why a program failed load-time validation.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("program %q failed validation: %s", e.Name, e.Reason)
}
