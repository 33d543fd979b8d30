// internal/providers/provider.go

// Package providers defines the interfaces for interacting with language model
// backends. It provides a common abstraction for single-shot completions and
// streaming chat responses, regardless of the underlying HTTP API shape.
package providers

import (
	"context"
	"time"

	"github.com/arxa-ai/arxa/internal/appconfig"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// Metadata describes a completed response, including token counts when the
// backend reports them.
type Metadata struct {
	Model         string
	CreatedAt     time.Time
	Done          bool
	TotalDuration int64
	PromptTokens  int
	OutputTokens  int
}

// Request encapsulates all the information needed for one model invocation.
type Request struct {
	Host         appconfig.Host
	Model        string
	Messages     []ChatMessage
	SystemPrompt string
	Parameters   appconfig.Parameters
	// Temperature, when set, overrides Parameters.Temperature. The query
	// expander pins it to zero for reproducible expansions.
	Temperature *float64
	JSONMode    bool
}

// StreamCallbacks defines the callbacks invoked during a streaming response.
// OnChunk is called for each fragment in arrival order; OnComplete once the
// stream is exhausted.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnComplete func(Metadata) error
}

// CompletionProvider is the interface all model backends implement.
type CompletionProvider interface {
	// Complete sends the request and blocks until the full completion text
	// is available.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream sends the request and forwards fragments to the callbacks as
	// they arrive.
	Stream(ctx context.Context, req Request, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}

// EffectiveParameters resolves the request's sampling parameters, applying the
// per-request temperature override.
func EffectiveParameters(req Request) appconfig.Parameters {
	params := req.Parameters
	if req.Temperature != nil {
		params.Temperature = req.Temperature
	}
	return params
}

// WithSystemPrompt prepends the system prompt, if any, to the message history.
func WithSystemPrompt(req Request) []ChatMessage {
	messages := req.Messages
	if req.SystemPrompt != "" {
		messages = append([]ChatMessage{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}
	if messages == nil {
		messages = []ChatMessage{}
	}
	return messages
}
