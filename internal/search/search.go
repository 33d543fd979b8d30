// Package search provides access to the paper search upstream. The pipeline
// consumes it through the Searcher interface so tests can substitute stubs.
package search

import "context"

// Paper is a single result returned by a Searcher, in provider rank order.
type Paper struct {
	Title     string
	Summary   string
	Authors   []string
	Published string
	URL       string
}

// Searcher executes a query against a paper index and returns up to
// maxResults papers in the provider's ranking order. Zero results is a valid
// outcome, not an error.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Paper, error)
}
