// internal/tools/retriever.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/pipeline"
	"github.com/arxa-ai/arxa/internal/prompts"
	"github.com/arxa-ai/arxa/internal/providers"
)

// ToolRetriever retrieves documents by asking the model which tool to call
// and with what arguments, then invoking it. It satisfies the pipeline's
// Retriever contract so tool mode swaps in without touching the other stages.
type ToolRetriever struct {
	provider providers.CompletionProvider
	host     appconfig.Host
	registry *Registry
}

// NewToolRetriever constructs a ToolRetriever bound to one model host.
func NewToolRetriever(provider providers.CompletionProvider, host appconfig.Host, registry *Registry) *ToolRetriever {
	return &ToolRetriever{provider: provider, host: host, registry: registry}
}

// selection is the JSON object the model replies with.
type selection struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Retrieve asks the model to pick a tool for the query, validates the chosen
// arguments against the tool's schema, and runs it. The result is capped at
// maxResults documents.
func (r *ToolRetriever) Retrieve(ctx context.Context, query pipeline.ExpandedQuery, maxResults int) ([]pipeline.Document, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, &pipeline.InvalidInputError{Field: "query", Reason: "must not be empty"}
	}
	if maxResults <= 0 {
		return nil, &pipeline.InvalidInputError{Field: "max_results", Reason: "must be positive"}
	}

	prompt, err := prompts.ToolSelection.Render(map[string]string{
		"tools": r.registry.Describe(),
		"query": query.Text,
	})
	if err != nil {
		return nil, err
	}

	zero := 0.0
	completion, err := r.provider.Complete(ctx, providers.Request{
		Host:        r.host,
		Model:       r.host.Model,
		Messages:    []providers.ChatMessage{{Role: "user", Content: prompt}},
		Parameters:  r.host.Parameters,
		Temperature: &zero,
		JSONMode:    true,
	})
	if err != nil {
		return nil, &pipeline.UpstreamError{Service: "llm", Err: err}
	}

	chosen, err := r.parseSelection(completion)
	if err != nil {
		return nil, &pipeline.UpstreamError{Service: "llm", Err: err}
	}

	tool, ok := r.registry.Lookup(chosen.Tool)
	if !ok {
		// A single-tool registry tolerates a misnamed selection.
		if names := r.registry.Names(); len(names) == 1 {
			tool, _ = r.registry.Lookup(names[0])
		} else {
			return nil, &pipeline.UpstreamError{Service: "llm", Err: fmt.Errorf("model selected unknown tool %q", chosen.Tool)}
		}
	}

	if err := validateArguments(tool, chosen.Arguments); err != nil {
		return nil, &pipeline.UpstreamError{Service: "llm", Err: err}
	}

	logging.LogEvent("tools: invoking %s with %d argument(s)", tool.Name(), len(chosen.Arguments))
	documents, err := tool.Invoke(ctx, chosen.Arguments)
	if err != nil {
		return nil, err
	}
	if len(documents) > maxResults {
		documents = documents[:maxResults]
	}
	return documents, nil
}

// parseSelection decodes the model's reply, tolerating text around the JSON
// object since not every model honors JSON mode strictly.
func (r *ToolRetriever) parseSelection(completion string) (selection, error) {
	var chosen selection
	trimmed := strings.TrimSpace(completion)
	if err := json.Unmarshal([]byte(trimmed), &chosen); err != nil {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return selection{}, fmt.Errorf("tool selection is not JSON: %q", trimmed)
		}
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &chosen); err != nil {
			return selection{}, fmt.Errorf("decode tool selection: %w", err)
		}
	}
	if strings.TrimSpace(chosen.Tool) == "" {
		return selection{}, fmt.Errorf("tool selection named no tool: %q", trimmed)
	}
	return chosen, nil
}
