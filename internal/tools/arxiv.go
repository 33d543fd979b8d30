// internal/tools/arxiv.go
package tools

import (
	"context"

	"github.com/arxa-ai/arxa/internal/pipeline"
	"github.com/arxa-ai/arxa/internal/search"
)

// ArxivSearchTool exposes the arXiv search client as a callable tool.
type ArxivSearchTool struct {
	searcher   search.Searcher
	maxResults int
}

// NewArxivSearchTool wraps the given searcher. maxResults caps the result
// count when the model does not ask for a specific one.
func NewArxivSearchTool(searcher search.Searcher, maxResults int) *ArxivSearchTool {
	return &ArxivSearchTool{searcher: searcher, maxResults: maxResults}
}

func (t *ArxivSearchTool) Name() string { return "search_arxiv" }

func (t *ArxivSearchTool) Description() string {
	return "Search arXiv.org for paper abstracts matching a query. Use for any question about scientific or mathematical research."
}

func (t *ArxivSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search terms, joined with OR for broader recall.",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "How many abstracts to return.",
			},
		},
		"required":             []any{"query"},
		"additionalProperties": false,
	}
}

// Invoke runs the search. An empty result set is a valid outcome.
func (t *ArxivSearchTool) Invoke(ctx context.Context, args map[string]any) ([]pipeline.Document, error) {
	query, _ := args["query"].(string)

	maxResults := t.maxResults
	// JSON numbers decode as float64.
	if n, ok := args["max_results"].(float64); ok && int(n) > 0 && int(n) < maxResults {
		maxResults = int(n)
	}

	papers, err := t.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, &pipeline.UpstreamError{Service: "arxiv", Err: err}
	}
	documents := make([]pipeline.Document, 0, len(papers))
	for i, paper := range papers {
		documents = append(documents, pipeline.Document{Summary: paper.Summary, Rank: i})
	}
	return documents, nil
}
