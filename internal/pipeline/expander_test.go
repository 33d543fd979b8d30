// internal/pipeline/expander_test.go
package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/providers"
)

func TestExpandReturnsCompletion(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		completeFn: func(req providers.Request) (string, error) {
			return "  Riemann hypothesis OR Riemann zeta function\n", nil
		},
	}
	expander := NewExpander(provider, appconfig.Host{Name: "h", Model: "m"})

	got, err := expander.Expand(context.Background(), "What is the Riemann hypothesis?")
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if got.Text != "Riemann hypothesis OR Riemann zeta function" {
		t.Fatalf("unexpected expansion: %q", got.Text)
	}
	if provider.lastReq.Temperature == nil || *provider.lastReq.Temperature != 0 {
		t.Fatal("expansion must pin temperature to zero")
	}
	if len(provider.lastReq.Messages) != 1 || !strings.Contains(provider.lastReq.Messages[0].Content, "What is the Riemann hypothesis?") {
		t.Fatalf("expected raw query embedded in prompt, got %+v", provider.lastReq.Messages)
	}
}

// TestExpandNeverEmpty verifies the non-empty guarantee under forced empty or
// whitespace completions from the model.
func TestExpandNeverEmpty(t *testing.T) {
	t.Parallel()

	for _, completion := range []string{"", "   ", "\n\t"} {
		provider := &stubProvider{
			completeFn: func(providers.Request) (string, error) { return completion, nil },
		}
		expander := NewExpander(provider, appconfig.Host{Model: "m"})

		got, err := expander.Expand(context.Background(), "quantum computing")
		if err != nil {
			t.Fatalf("Expand error for completion %q: %v", completion, err)
		}
		if got.Text != "quantum computing" {
			t.Fatalf("expected fallback to raw query for completion %q, got %q", completion, got.Text)
		}
	}
}

func TestExpandBlankQueryFailsBeforeUpstream(t *testing.T) {
	t.Parallel()

	called := false
	provider := &stubProvider{
		completeFn: func(providers.Request) (string, error) {
			called = true
			return "x", nil
		},
	}
	expander := NewExpander(provider, appconfig.Host{Model: "m"})

	_, err := expander.Expand(context.Background(), "   ")
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if called {
		t.Fatal("blank query must not reach the model")
	}
}

func TestExpandUpstreamFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	provider := &stubProvider{
		completeFn: func(providers.Request) (string, error) { return "", cause },
	}
	expander := NewExpander(provider, appconfig.Host{Model: "m"})

	_, err := expander.Expand(context.Background(), "q")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Service != "llm" || !errors.Is(err, cause) {
		t.Fatalf("unexpected upstream error: %+v", upstream)
	}
}
