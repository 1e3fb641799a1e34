// Package job implements the submission-and-polling engine for long-running
// backend operations. The gateway in front of the backend enforces a hard
// per-request duration ceiling of tens of seconds while generation can
// legitimately take minutes, so an operation is submitted as a job in one
// bounded request and its status is then polled on a fixed cadence until a
// terminal state or a generous deadline. The engine drives a notification
// record through progress, success and error throughout; the UI only renders.
package job
