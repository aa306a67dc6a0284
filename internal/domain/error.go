package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotActionable       = errors.New("proposal is not in an actionable status")
	ErrInvalidTransition   = errors.New("status transition not permitted")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPollInFlight        = errors.New("a poll for this job is already in flight")
	ErrPollTimeout         = errors.New("job did not reach a terminal status in time")
	ErrUnauthorized        = errors.New("unauthorized")

	// Storage errors
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// JobFailedError carries the server-reported failure message for a job that
// reached the failed status. It is distinct from ErrPollTimeout so callers
// can tell "the job failed" apart from "the job took too long".
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// IsJobFailed reports whether err wraps a JobFailedError.
func IsJobFailed(err error) bool {
	var jf *JobFailedError
	return errors.As(err, &jf)
}
