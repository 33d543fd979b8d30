// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/providers"
	"github.com/arxa-ai/arxa/internal/providers/ollama"
	"github.com/arxa-ai/arxa/internal/providers/openaicompat"
)

// NewCompletionProvider selects and configures the provider implementation
// matching the host's declared type.
func NewCompletionProvider(cfg *appconfig.Config, host appconfig.Host) (providers.CompletionProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch strings.ToLower(strings.TrimSpace(host.Type)) {
	case "", "ollama":
		return ollama.New(cfg), nil
	case "openai", "openai-compatible", "llama.cpp":
		return openaicompat.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown host type %q for host %q", host.Type, host.Name)
	}
}
