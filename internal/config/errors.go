package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoDataFile is returned when no snapshot file path is configured.
	ErrNoDataFile = errors.New("no snapshot file configured")

	// ErrInvalidConcurrency is returned when the import concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid import concurrency: must be positive")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
