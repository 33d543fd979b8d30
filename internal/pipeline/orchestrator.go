// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/util"
)

// State names the orchestrator's position in the per-turn sequence.
type State int

const (
	StateIdle State = iota
	StateExpanding
	StateRetrieving
	StateAssembling
	StateSynthesizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExpanding:
		return "expanding"
	case StateRetrieving:
		return "retrieving"
	case StateAssembling:
		return "assembling"
	case StateSynthesizing:
		return "synthesizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Orchestrator sequences one user turn through expansion, retrieval,
// assembly, and synthesis, recording the conversation in memory. Turns are
// strictly one at a time; a submission while another is in flight fails with
// ErrBusy without touching memory.
type Orchestrator struct {
	expander    *Expander
	retriever   Retriever
	synthesizer *Synthesizer
	memory      Memory
	maxResults  int
	budget      int

	mu       sync.Mutex
	inFlight bool
	state    State
}

// NewOrchestrator wires the pipeline stages together. maxResults and budget
// follow the retriever and assembler contracts (both must be positive).
func NewOrchestrator(expander *Expander, retriever Retriever, synthesizer *Synthesizer, memory Memory, maxResults, budget int) *Orchestrator {
	return &Orchestrator{
		expander:    expander,
		retriever:   retriever,
		synthesizer: synthesizer,
		memory:      memory,
		maxResults:  maxResults,
		budget:      budget,
		state:       StateIdle,
	}
}

// History returns the conversation so far, oldest first.
func (o *Orchestrator) History() []Turn {
	return o.memory.History()
}

// State reports the current position in the turn sequence.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	logging.LogEvent("pipeline: state=%s", s)
}

// Submit runs one user turn. The raw text is appended to memory immediately
// so it is visible before the answer arrives. When sink is non-nil the answer
// is streamed and each fragment is forwarded in order; otherwise a single
// batch completion is used. On any stage failure an error-message turn is
// appended in place of an answer and the turn is not retried.
func (o *Orchestrator) Submit(ctx context.Context, raw string, sink func(fragment string)) (Answer, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return Answer{}, ErrBusy
	}
	o.inFlight = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	o.memory.Append(RoleUser, raw)

	o.setState(StateExpanding)
	expanded, err := o.expander.Expand(ctx, raw)
	if err != nil {
		return o.fail(err)
	}
	logging.LogEvent("pipeline: expanded query %q", util.TruncateRunes(expanded.Text, 200))

	o.setState(StateRetrieving)
	documents, err := o.retriever.Retrieve(ctx, expanded, o.maxResults)
	if err != nil {
		return o.fail(err)
	}

	o.setState(StateAssembling)
	assembled, err := Assemble(documents, o.budget)
	if err != nil {
		return o.fail(err)
	}
	logging.LogEvent("pipeline: assembled %d/%d documents (%d chars, truncated=%v)",
		assembled.IncludedCount, len(documents), len(assembled.Text), assembled.Truncated)

	o.setState(StateSynthesizing)
	var answer Answer
	if sink != nil {
		answer, err = o.synthesizeStreaming(ctx, assembled, expanded, sink)
	} else {
		answer, err = o.synthesizer.Synthesize(ctx, assembled, expanded)
	}
	if err != nil {
		return o.fail(err)
	}

	o.memory.Append(RoleAssistant, answer.Text)
	o.setState(StateDone)
	return answer, nil
}

func (o *Orchestrator) synthesizeStreaming(ctx context.Context, assembled AssembledContext, expanded ExpandedQuery, sink func(string)) (Answer, error) {
	stream, err := o.synthesizer.SynthesizeStream(ctx, assembled, expanded)
	if err != nil {
		return Answer{}, err
	}
	for stream.Next(ctx) {
		sink(stream.Fragment())
	}
	return stream.Answer()
}

// fail records the failed state and appends a user-visible error turn so the
// history never holds a half-written answer.
func (o *Orchestrator) fail(err error) (Answer, error) {
	o.setState(StateFailed)
	o.memory.Append(RoleAssistant, userFacingError(err))
	return Answer{}, err
}

func userFacingError(err error) string {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return fmt.Sprintf("I couldn't process that: %s %s.", invalid.Field, invalid.Reason)
	}
	if errors.Is(err, context.Canceled) {
		return "That request was canceled before an answer arrived. Please ask again."
	}
	return fmt.Sprintf("Sorry, something went wrong while answering (%v). Please try again.", err)
}
