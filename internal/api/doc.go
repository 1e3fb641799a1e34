// Package api implements the JSON-over-HTTP client for the lexicall backend.
// The backend sits behind a gateway that enforces a hard per-request duration
// ceiling, so every call carries a short per-call timeout and long-running
// operations are submitted as jobs and polled separately. All calls flow
// through a circuit breaker to avoid hammering an unresponsive backend.
package api
