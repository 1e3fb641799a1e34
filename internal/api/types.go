package api

import "encoding/json"

// Status represents the backend-reported state of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// rank orders statuses so that an observed sequence can be kept monotonic.
// Both terminal states share the highest rank.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	case StatusSucceeded, StatusFailed:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether s is as far along the job lifecycle as other.
// Used to reject out-of-order poll responses.
func (s Status) AtLeast(other Status) bool {
	return s.rank() >= other.rank()
}

// JobStatus is the backend's representation of a submitted job
type JobStatus struct {
	JobID  string          `json:"job_id"`
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// LookupResult is the response of the metadata lookup endpoint. Absence is a
// well-formed response (Found = false), never an HTTP error, because absence
// is cached by the caller.
type LookupResult struct {
	Found    bool   `json:"found"`
	ID       string `json:"id,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
	Language string `json:"language,omitempty"`
	PackID   string `json:"pack_id,omitempty"`
}
