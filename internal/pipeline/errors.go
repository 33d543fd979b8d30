// internal/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a turn is submitted while another is in flight.
// The conversation memory is not touched in that case.
var ErrBusy = errors.New("pipeline: a turn is already in flight")

// InvalidInputError reports a caller-detectable bad argument, such as a blank
// query or a negative budget. Never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a failure of an external provider (LLM inference or
// paper search). The orchestrator surfaces it without retrying.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
