// internal/pipeline/retriever.go
package pipeline

import (
	"context"
	"strings"

	"github.com/arxa-ai/arxa/internal/search"
)

// Retriever fetches supporting documents for an expanded query. The returned
// sequence holds at most maxResults documents in provider rank order; empty
// is a valid terminal state, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query ExpandedQuery, maxResults int) ([]Document, error)
}

// SearchRetriever adapts a search.Searcher (the arXiv client in production)
// to the pipeline's Retriever contract.
type SearchRetriever struct {
	searcher search.Searcher
}

// NewSearchRetriever wraps the given searcher.
func NewSearchRetriever(searcher search.Searcher) *SearchRetriever {
	return &SearchRetriever{searcher: searcher}
}

// Retrieve issues one search and maps results to ranked documents.
func (r *SearchRetriever) Retrieve(ctx context.Context, query ExpandedQuery, maxResults int) ([]Document, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, &InvalidInputError{Field: "query", Reason: "must not be empty"}
	}
	if maxResults <= 0 {
		return nil, &InvalidInputError{Field: "max_results", Reason: "must be positive"}
	}

	papers, err := r.searcher.Search(ctx, query.Text, maxResults)
	if err != nil {
		return nil, &UpstreamError{Service: "arxiv", Err: err}
	}

	documents := make([]Document, 0, len(papers))
	for i, paper := range papers {
		documents = append(documents, Document{Summary: paper.Summary, Rank: i})
	}
	return documents, nil
}
