package store

import "errors"

// Sentinel errors for the failure taxonomy. Callers match with errors.Is.
var (
	// ErrValidation marks malformed or incomplete input to a mutating
	// operation. The operation is aborted with no partial state.
	ErrValidation = errors.New("validation failed")

	// ErrNotConfigured marks an operation that needs fully populated
	// reality parameters before they exist.
	ErrNotConfigured = errors.New("reality parameters not configured")

	// ErrIntegrity marks a referential mismatch between the server
	// document and the metadata document. It is fatal, never auto-repaired.
	ErrIntegrity = errors.New("config/metadata integrity violation")
)
