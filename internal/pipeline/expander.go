// internal/pipeline/expander.go
package pipeline

import (
	"context"
	"strings"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/prompts"
	"github.com/arxa-ai/arxa/internal/providers"
)

// Expander rewrites a raw query into a disjunction of related search terms
// using the expansion prompt. Sampling is pinned to temperature zero so the
// same question expands the same way.
type Expander struct {
	provider providers.CompletionProvider
	host     appconfig.Host
}

// NewExpander constructs an Expander bound to one model host.
func NewExpander(provider providers.CompletionProvider, host appconfig.Host) *Expander {
	return &Expander{provider: provider, host: host}
}

// Expand returns a non-empty expanded query for a non-blank raw query. If the
// model returns an empty completion, the original query text is used
// unchanged rather than propagating an empty query downstream.
func (e *Expander) Expand(ctx context.Context, raw string) (ExpandedQuery, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ExpandedQuery{}, &InvalidInputError{Field: "raw_query", Reason: "must not be empty"}
	}

	prompt, err := prompts.Expansion.Render(map[string]string{"query": raw})
	if err != nil {
		return ExpandedQuery{}, err
	}

	zero := 0.0
	completion, err := e.provider.Complete(ctx, providers.Request{
		Host:        e.host,
		Model:       e.host.Model,
		Messages:    []providers.ChatMessage{{Role: "user", Content: prompt}},
		Parameters:  e.host.Parameters,
		Temperature: &zero,
	})
	if err != nil {
		return ExpandedQuery{}, &UpstreamError{Service: "llm", Err: err}
	}

	expanded := strings.TrimSpace(completion)
	if expanded == "" {
		expanded = raw
	}
	return ExpandedQuery{Text: expanded}, nil
}
