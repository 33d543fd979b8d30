// internal/pipeline/synthesizer.go
package pipeline

import (
	"context"
	"strings"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/prompts"
	"github.com/arxa-ai/arxa/internal/providers"
)

// Synthesizer produces the final answer from the assembled context and the
// expanded query, either as one completion or as an ordered fragment stream.
type Synthesizer struct {
	provider providers.CompletionProvider
	host     appconfig.Host
}

// NewSynthesizer constructs a Synthesizer bound to one model host.
func NewSynthesizer(provider providers.CompletionProvider, host appconfig.Host) *Synthesizer {
	return &Synthesizer{provider: provider, host: host}
}

func (s *Synthesizer) request(assembled AssembledContext, query ExpandedQuery) (providers.Request, error) {
	prompt, err := prompts.Answer.Render(map[string]string{
		"abstracts":      assembled.Text,
		"expanded_query": query.Text,
	})
	if err != nil {
		return providers.Request{}, err
	}
	return providers.Request{
		Host:         s.host,
		Model:        s.host.Model,
		Messages:     []providers.ChatMessage{{Role: "user", Content: prompt}},
		SystemPrompt: s.host.SystemPrompt,
		Parameters:   s.host.Parameters,
	}, nil
}

// Synthesize blocks until the complete answer is available. An empty context
// is valid input; the answer is then flagged as drawn from the model's own
// knowledge.
func (s *Synthesizer) Synthesize(ctx context.Context, assembled AssembledContext, query ExpandedQuery) (Answer, error) {
	req, err := s.request(assembled, query)
	if err != nil {
		return Answer{}, err
	}
	completion, err := s.provider.Complete(ctx, req)
	if err != nil {
		return Answer{}, &UpstreamError{Service: "llm", Err: err}
	}
	return Answer{
		Text:                  strings.TrimSpace(completion),
		UsedFallbackKnowledge: assembled.Text == "",
	}, nil
}

// SynthesizeStream starts a streaming completion and returns an AnswerStream
// whose fragments concatenate to the same text a batch call would return.
// The stream is finite and cannot be replayed once consumed.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, assembled AssembledContext, query ExpandedQuery) (*AnswerStream, error) {
	req, err := s.request(assembled, query)
	if err != nil {
		return nil, err
	}

	stream := &AnswerStream{
		fragments: make(chan string),
		result:    make(chan error, 1),
		fallback:  assembled.Text == "",
	}

	go func() {
		err := s.provider.Stream(ctx, req, providers.StreamCallbacks{
			OnChunk: func(msg providers.ChatMessage) error {
				select {
				case stream.fragments <- msg.Content:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		})
		if err != nil {
			err = &UpstreamError{Service: "llm", Err: err}
		}
		stream.result <- err
		close(stream.fragments)
	}()

	return stream, nil
}

// AnswerStream is a lazy, finite, non-restartable sequence of answer
// fragments consumed by exactly one reader:
//
//	for stream.Next(ctx) {
//	    render(stream.Fragment())
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Fragments arrive in production order. A mid-stream upstream failure is
// reported by Err after the already-emitted fragments; the partial text must
// be treated as a failed turn, not an answer.
type AnswerStream struct {
	fragments chan string
	result    chan error
	current   string
	text      strings.Builder
	err       error
	done      bool
	fallback  bool
}

// Next advances to the next fragment. It returns false when the stream is
// exhausted, failed, or the context is canceled.
func (s *AnswerStream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	select {
	case fragment, ok := <-s.fragments:
		if !ok {
			s.done = true
			s.err = <-s.result
			return false
		}
		s.current = fragment
		s.text.WriteString(fragment)
		return true
	case <-ctx.Done():
		s.done = true
		s.err = ctx.Err()
		return false
	}
}

// Fragment returns the fragment produced by the last successful Next call.
func (s *AnswerStream) Fragment() string { return s.current }

// Err reports why the stream stopped, or nil after clean exhaustion.
func (s *AnswerStream) Err() error { return s.err }

// Answer returns the accumulated answer after the stream is exhausted.
func (s *AnswerStream) Answer() (Answer, error) {
	if !s.done {
		return Answer{}, &InvalidInputError{Field: "stream", Reason: "not yet exhausted"}
	}
	if s.err != nil {
		return Answer{}, s.err
	}
	return Answer{
		Text:                  strings.TrimSpace(s.text.String()),
		UsedFallbackKnowledge: s.fallback,
	}, nil
}
