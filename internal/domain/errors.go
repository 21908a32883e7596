package domain

import "errors"

var (
	// ErrValidation marks input shape or bounds violations. Mapped to 400 at the HTTP boundary.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks lookups for records that do not exist. Mapped to 404.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks invalid state transitions and uniqueness violations. Mapped to 409.
	ErrConflict = errors.New("conflict")

	// ErrNoEligibleAgents is raised when a distribution pass finds zero active agents.
	ErrNoEligibleAgents = errors.New("no eligible agents")
)
