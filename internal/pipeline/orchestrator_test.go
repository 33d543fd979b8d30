// internal/pipeline/orchestrator_test.go
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/providers"
	"github.com/arxa-ai/arxa/internal/search"
)

// testOrchestrator wires an orchestrator from stubs. The provider routes the
// expansion prompt and the answer prompt by content.
func testOrchestrator(memory Memory, searcher search.Searcher, synthText string) *Orchestrator {
	provider := &stubProvider{
		completeFn: func(req providers.Request) (string, error) {
			prompt := req.Messages[0].Content
			if strings.Contains(prompt, "query expansion") {
				return "Riemann hypothesis OR Riemann zeta function", nil
			}
			if synthText != "" {
				return synthText, nil
			}
			// Echo stub used by the end-to-end scenario.
			abstracts := extractBetween(prompt, "Abstracts:\n\n", "\n\nQuery:")
			return "Answer based on: " + abstracts, nil
		},
	}
	host := appconfig.Host{Name: "h", Model: "m"}
	return NewOrchestrator(
		NewExpander(provider, host),
		NewSearchRetriever(searcher),
		NewSynthesizer(provider, host),
		memory,
		4,
		1000,
	)
}

func extractBetween(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	j := strings.Index(s, end)
	if j < 0 {
		return s
	}
	return s[:j]
}

// TestSubmitEndToEnd runs the full Riemann scenario: expansion, retrieval of
// two documents, assembly under budget, and a synthesizer echoing the context.
func TestSubmitEndToEnd(t *testing.T) {
	t.Parallel()

	mem := &logMemory{}
	searcher := &stubSearcher{papers: []search.Paper{
		{Summary: "Doc A about zeta functions."},
		{Summary: "Doc B about prime numbers."},
	}}
	orch := testOrchestrator(mem, searcher, "")

	answer, err := orch.Submit(context.Background(), "What is the Riemann hypothesis?", nil)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if searcher.query != "Riemann hypothesis OR Riemann zeta function" {
		t.Fatalf("retriever got query %q", searcher.query)
	}
	if !strings.HasPrefix(answer.Text, "Answer based on:") {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "Doc A about zeta functions.\n\nDoc B about prime numbers.") {
		t.Fatalf("expected both documents concatenated in context, got %q", answer.Text)
	}
	if orch.State() != StateDone {
		t.Fatalf("expected done state, got %s", orch.State())
	}
	history := mem.History()
	if len(history) != 2 || !strings.HasPrefix(history[1].Text, "Answer based on:") {
		t.Fatalf("expected answer turn recorded, got %+v", history)
	}
}

// TestSubmitRecordsTwoTurns verifies a successful turn appends exactly a user
// turn then an assistant turn with strictly increasing sequence indexes.
func TestSubmitRecordsTwoTurns(t *testing.T) {
	t.Parallel()

	mem := &logMemory{}
	orch := testOrchestrator(mem, &stubSearcher{}, "fine answer")

	if _, err := orch.Submit(context.Background(), "a question", nil); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	history := mem.History()
	if len(history) != 2 {
		t.Fatalf("expected exactly 2 turns, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[0].Text != "a question" {
		t.Fatalf("unexpected user turn: %+v", history[0])
	}
	if history[1].Role != RoleAssistant || history[1].Text != "fine answer" {
		t.Fatalf("unexpected assistant turn: %+v", history[1])
	}
	if history[1].Seq <= history[0].Seq {
		t.Fatalf("sequence not increasing: %+v", history)
	}
}

// TestSubmitFailureRecordsErrorTurn verifies a failed turn appends the user
// turn and an error-message turn, and no answer text is recorded.
func TestSubmitFailureRecordsErrorTurn(t *testing.T) {
	t.Parallel()

	mem := &logMemory{}
	searcher := &stubSearcher{err: errors.New("search backend down")}
	orch := testOrchestrator(mem, searcher, "never produced")

	_, err := orch.Submit(context.Background(), "a question", nil)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}

	history := mem.History()
	if len(history) != 2 {
		t.Fatalf("expected exactly 2 turns, got %d", len(history))
	}
	if history[1].Role != RoleAssistant || !strings.Contains(history[1].Text, "try again") {
		t.Fatalf("expected user-visible error turn, got %+v", history[1])
	}
	if strings.Contains(history[1].Text, "never produced") {
		t.Fatal("no answer text may be recorded for a failed turn")
	}
	if orch.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", orch.State())
	}
}

// TestSubmitBlankQuery verifies invalid input fails the turn without reaching
// any upstream, still leaving a consistent two-turn record.
func TestSubmitBlankQuery(t *testing.T) {
	t.Parallel()

	mem := &logMemory{}
	orch := testOrchestrator(mem, &stubSearcher{}, "x")

	_, err := orch.Submit(context.Background(), "   ", nil)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if len(mem.History()) != 2 {
		t.Fatalf("expected user turn plus error turn, got %d turns", len(mem.History()))
	}
}

// TestSubmitZeroResults verifies an empty retrieval is not an error: the
// synthesizer runs with an empty context and the answer is flagged.
func TestSubmitZeroResults(t *testing.T) {
	t.Parallel()

	mem := &logMemory{}
	orch := testOrchestrator(mem, &stubSearcher{}, "answer from own knowledge")

	answer, err := orch.Submit(context.Background(), "an obscure question", nil)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !answer.UsedFallbackKnowledge {
		t.Fatal("expected fallback flag when no documents retrieved")
	}
	if len(mem.History()) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(mem.History()))
	}
}

// TestSubmitStreaming verifies fragments reach the sink in order and the
// final turn text equals their concatenation.
func TestSubmitStreaming(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		completeFn: func(req providers.Request) (string, error) {
			return "riemann OR zeta", nil
		},
		streamFn: fragmentsStream("The ", "Riemann ", "hypothesis..."),
	}
	host := appconfig.Host{Name: "h", Model: "m"}
	mem := &logMemory{}
	orch := NewOrchestrator(
		NewExpander(provider, host),
		NewSearchRetriever(&stubSearcher{papers: []search.Paper{{Summary: "Doc A."}}}),
		NewSynthesizer(provider, host),
		mem, 4, 1000,
	)

	var got []string
	answer, err := orch.Submit(context.Background(), "q", func(fragment string) {
		got = append(got, fragment)
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if strings.Join(got, "") != "The Riemann hypothesis..." {
		t.Fatalf("unexpected fragments: %v", got)
	}
	if answer.Text != "The Riemann hypothesis..." {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
	if mem.History()[1].Text != answer.Text {
		t.Fatalf("assistant turn %q != answer %q", mem.History()[1].Text, answer.Text)
	}
}

// TestSubmitRejectsConcurrentTurn verifies a second submission while one is
// in flight fails with ErrBusy and leaves memory untouched.
func TestSubmitRejectsConcurrentTurn(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	provider := &stubProvider{
		completeFn: func(req providers.Request) (string, error) {
			prompt := req.Messages[0].Content
			if strings.Contains(prompt, "query expansion") {
				close(started)
				<-release
				return "slow expansion", nil
			}
			return "answer", nil
		},
	}
	host := appconfig.Host{Model: "m"}
	mem := &logMemory{}
	orch := NewOrchestrator(
		NewExpander(provider, host),
		NewSearchRetriever(&stubSearcher{}),
		NewSynthesizer(provider, host),
		mem, 4, 1000,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = orch.Submit(context.Background(), "first", nil)
	}()

	<-started
	turnsBefore := len(mem.History())
	_, err := orch.Submit(context.Background(), "second", nil)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if len(mem.History()) != turnsBefore {
		t.Fatal("a rejected submission must not touch memory")
	}
	close(release)
	wg.Wait()

	if len(mem.History()) != 2 {
		t.Fatalf("expected the first turn to complete with 2 turns, got %d", len(mem.History()))
	}
}
