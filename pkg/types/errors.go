package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the API. Wrap them with fmt.Errorf("...: %w", ErrX)
// and compare with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrClientNotFound    = fmt.Errorf("client %w", ErrNotFound)
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrChecklistNotFound = fmt.Errorf("checklist item %w", ErrNotFound)
	ErrDocumentNotFound  = fmt.Errorf("document %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
)
