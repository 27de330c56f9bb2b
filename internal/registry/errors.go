package registry

import "github.com/pkg/errors"

// Lookup/creation errors returned by Registry methods; compare with errors.Is.
var (
	ErrNotFound      = errors.New("session not found")
	ErrInvalidName   = errors.New("player name must not be empty")
	ErrCodeExhausted = errors.New("could not generate a unique session code")
	ErrShuttingDown  = errors.New("registry is shutting down")
)
