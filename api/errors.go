package api

import (
	"fmt"
	"time"
)

// RemoteError is a non-2xx response or a failed round trip. It always
// triggers the rollback path in the mutation engine.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote write failed: %s", e.Message)
	}
	return fmt.Sprintf("remote write failed (%d): %s", e.Status, e.Message)
}

// TimeoutError is a remote call that exceeded its bound. Rollback handling
// is identical to RemoteError; the UI reports it distinctly ("operation
// timed out" rather than "operation failed").
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}
