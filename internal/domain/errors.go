package domain

import "errors"

// Error taxonomy shared by every boundary (HTTP, MCP, CLI). Lower layers wrap
// one of these with %w and boundaries map them with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrGenerationFailed = errors.New("generation failed")
	ErrParse            = errors.New("failed to parse model output")
	ErrPersistence      = errors.New("persistence failure")
)
