package selector

import "errors"

// Error definitions for the selector package.
var (
	// ErrInvalidSinceTime is returned when the since time is invalid.
	ErrInvalidSinceTime = errors.New("since time cannot be in the future")
	// ErrInvalidSinceDuration is returned when the since duration is invalid.
	ErrInvalidSinceDuration = errors.New("since duration cannot be negative")
	// ErrInvalidContainerState is returned when the container state is invalid.
	ErrInvalidContainerState = errors.New("invalid container state, must be 'all', 'running', or 'terminated'")
	// ErrEmptySelector is returned when no selection criteria are provided.
	ErrEmptySelector = errors.New("at least one selection criterion must be specified")
	// ErrNoNamespaceSpecified is returned when no namespace is specified.
	ErrNoNamespaceSpecified = errors.New("no namespace specified")
	// ErrInvalidSampleSize is returned when the requested sample is not positive.
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)
