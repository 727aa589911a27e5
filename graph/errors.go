package graph

import "errors"

// ErrMaxStepsExceeded indicates the run reached the MaxSteps bound without
// terminating. It guards against routing bugs that would otherwise loop
// forever.
var ErrMaxStepsExceeded = errors.New("execution exceeded maximum steps limit")

// EngineError is an error from Engine configuration or execution.
type EngineError struct {
	Message string
	Code    string
}

func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
