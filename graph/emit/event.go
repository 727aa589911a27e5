// Package emit provides observability events for workflow execution and
// pluggable emitter backends (log, zap, OpenTelemetry, buffered, null).
package emit

// Event is an observability event emitted during workflow execution.
type Event struct {
	// RunID identifies the workflow execution that emitted this event.
	RunID string

	// Step is the sequential step number (1-indexed). Zero for
	// run-level events.
	Step int

	// NodeID identifies which node this event concerns. Empty for
	// run-level events.
	NodeID string

	// Msg is a short human-readable description ("node completed",
	// "retrying node", "checkpoint saved").
	Msg string

	// Meta carries additional structured data. Common keys:
	// "duration_ms", "error", "attempt", "checkpoint_id".
	Meta map[string]interface{}
}

// Emitter receives observability events from workflow execution.
//
// Implementations must be safe for concurrent use, must not block
// workflow execution, and must not panic; backend failures should be
// swallowed or logged internally.
type Emitter interface {
	Emit(event Event)
}
