package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrInvalid indicates a setting holds an unusable value.
	ErrInvalid = errors.New("invalid configuration")

	// ErrFileNotFound indicates an explicitly requested config file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")
)
