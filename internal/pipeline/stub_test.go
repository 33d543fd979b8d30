// internal/pipeline/stub_test.go
package pipeline

import (
	"context"
	"errors"

	"github.com/arxa-ai/arxa/internal/providers"
	"github.com/arxa-ai/arxa/internal/search"
)

// stubProvider implements providers.CompletionProvider for pipeline tests.
type stubProvider struct {
	completeFn func(req providers.Request) (string, error)
	streamFn   func(req providers.Request, callbacks providers.StreamCallbacks) error
	lastReq    providers.Request
}

func (p *stubProvider) Complete(_ context.Context, req providers.Request) (string, error) {
	p.lastReq = req
	if p.completeFn == nil {
		return "", errors.New("stub: no complete handler")
	}
	return p.completeFn(req)
}

func (p *stubProvider) Stream(_ context.Context, req providers.Request, callbacks providers.StreamCallbacks) error {
	p.lastReq = req
	if p.streamFn == nil {
		return errors.New("stub: no stream handler")
	}
	return p.streamFn(req, callbacks)
}

func (p *stubProvider) Close() error { return nil }

// fragmentsStream builds a stream handler that emits the given fragments in
// order and then completes.
func fragmentsStream(fragments ...string) func(providers.Request, providers.StreamCallbacks) error {
	return func(_ providers.Request, callbacks providers.StreamCallbacks) error {
		for _, fragment := range fragments {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: "assistant", Content: fragment}); err != nil {
				return err
			}
		}
		if callbacks.OnComplete != nil {
			return callbacks.OnComplete(providers.Metadata{Done: true})
		}
		return nil
	}
}

// stubSearcher implements search.Searcher with canned papers.
type stubSearcher struct {
	papers []search.Paper
	err    error
	query  string
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) ([]search.Paper, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	if len(s.papers) > maxResults {
		return s.papers[:maxResults], nil
	}
	return s.papers, nil
}

// logMemory is an in-test Memory implementation.
type logMemory struct {
	turns []Turn
}

func (m *logMemory) Append(role Role, text string) Turn {
	turn := Turn{Role: role, Text: text, Seq: len(m.turns)}
	m.turns = append(m.turns, turn)
	return turn
}

func (m *logMemory) History() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}
