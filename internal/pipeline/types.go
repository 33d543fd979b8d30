// Package pipeline implements the query-expansion-and-retrieval-augmented
// answer flow: each user turn is expanded, used to retrieve paper abstracts,
// folded into a bounded context block, and answered by the model, with the
// conversation recorded turn by turn.
package pipeline

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a human-submitted turn.
	RoleUser Role = "user"
	// RoleAssistant marks a model-produced (or error-message) turn.
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Immutable once created; Seq is
// assigned by the conversation memory and strictly increases.
type Turn struct {
	Role Role
	Text string
	Seq  int
}

// Query is the raw user question for one turn.
type Query struct {
	Raw string
}

// ExpandedQuery is the search string derived from a Query. Always non-empty:
// expansion falls back to the raw text rather than propagating an empty
// query downstream.
type ExpandedQuery struct {
	Text string
}

// Document is one retrieved abstract. Rank reflects provider-returned order;
// results are passed through without deduplication.
type Document struct {
	Summary string
	Rank    int
}

// AssembledContext is the bounded text block embedded in the answer prompt.
// Text never exceeds the configured character budget; IncludedCount is the
// number of whole documents that fit; Truncated reports whether any document
// was dropped from the tail.
type AssembledContext struct {
	Text          string
	IncludedCount int
	Truncated     bool
}

// Answer is the final model response for one turn. UsedFallbackKnowledge is
// advisory: it is set when the assembled context was empty, in which case the
// prompt instructs the model to disclose that it answered from its own
// knowledge.
type Answer struct {
	Text                  string
	UsedFallbackKnowledge bool
}

// Memory is the append-only conversation log read before and written after
// each turn. Implementations assign strictly increasing sequence indexes.
type Memory interface {
	Append(role Role, text string) Turn
	History() []Turn
}
