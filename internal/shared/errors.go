package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSourceQuery        = fmt.Errorf("chart source query failed")
	ErrLookupMiss         = fmt.Errorf("track lookup miss")

	// Persistence errors
	ErrRunNotFound      = fmt.Errorf("run not found")
	ErrCheckpoint       = fmt.Errorf("checkpoint error")
	ErrCheckpointLocked = fmt.Errorf("checkpoint is locked by another process")

	// Input validation errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrInvalidDateFormat = fmt.Errorf("invalid date format")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)
