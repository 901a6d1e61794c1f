package config

import "errors"

// Configuration validation errors.
// They are wrapped in a model config error by Validate and Load, so
// callers can test for them with errors.Is.
var (
	// ErrInvalidBaseURL is returned when the base URL is not absolute.
	ErrInvalidBaseURL = errors.New("invalid base URL: must include scheme and host")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetryAttempts is returned when fewer than one attempt is configured.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be at least 1")

	// ErrNegativeDuration is returned when a delay is negative.
	ErrNegativeDuration = errors.New("invalid duration: must be non-negative")

	// ErrInvalidBool is returned when a boolean variable has an unknown value.
	ErrInvalidBool = errors.New("invalid boolean value")

	// ErrConfigNotFound is returned when an explicit configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
