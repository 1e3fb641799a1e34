package job

import (
	"errors"
	"fmt"
)

// ErrDeadlineExceeded is returned when the polling loop exhausts its window
// without observing a terminal status. It is distinct from a job failure: the
// job may still complete server-side.
var ErrDeadlineExceeded = errors.New("polling deadline exceeded")

// FailedError represents a backend-reported terminal job failure. The backend
// message is surfaced verbatim.
type FailedError struct {
	JobID   string
	Message string
}

func (e *FailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
	}
	return fmt.Sprintf("job %s failed", e.JobID)
}
