package domain

import "errors"

var (
	// ErrInvalidPayload is returned when a message body or task args are malformed
	ErrInvalidPayload = errors.New("invalid job payload")

	// ErrMaxRetriesExceeded is returned when a job arrives with no attempts left
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrUnknownTask is returned when no handler is registered for a task name
	ErrUnknownTask = errors.New("unknown task")

	// ErrInvalidTransition is returned when a job would leave its lifecycle
	ErrInvalidTransition = errors.New("invalid job state transition")
)
