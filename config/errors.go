package config

import "errors"

// Configuration errors.
var (
	// ErrInvalidDuration indicates a duration value could not be parsed.
	ErrInvalidDuration = errors.New("config: invalid duration")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrMissingAddr indicates Server.Addr is empty.
	ErrMissingAddr = errors.New("config: server address is required")

	// ErrNegativeDuration indicates a duration that must not be negative.
	ErrNegativeDuration = errors.New("config: duration must not be negative")

	// ErrInvalidAPIKey indicates an API key entry without key or principal.
	ErrInvalidAPIKey = errors.New("config: api key requires key and principal")

	// ErrShortSecret indicates a JWT secret below the minimum length.
	ErrShortSecret = errors.New("config: jwt secret must be at least 16 bytes")
)
