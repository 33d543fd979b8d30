// Package tools defines the callable tools the assistant can route a
// question through, and a registry that validates tool arguments against
// each tool's JSON schema before invocation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/arxa-ai/arxa/internal/pipeline"
)

// Tool is one callable capability. Schema returns a JSON Schema describing
// the arguments object; a nil schema accepts anything.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Invoke(ctx context.Context, args map[string]any) ([]pipeline.Document, error)
}

// Registry holds the available tools keyed by lowercase name.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds a registry over the given tools. Duplicate names are an
// error so a later registration can never shadow an earlier one silently.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, tool := range tools {
		key := strings.ToLower(strings.TrimSpace(tool.Name()))
		if key == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := r.tools[key]; exists {
			return nil, fmt.Errorf("duplicate tool %q", tool.Name())
		}
		r.tools[key] = tool
	}
	return r, nil
}

// Lookup resolves a tool by name, ignoring case and surrounding whitespace.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.tools[strings.ToLower(strings.TrimSpace(name))]
	return tool, ok
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, tool := range r.tools {
		names = append(names, tool.Name())
	}
	sort.Strings(names)
	return names
}

// Describe renders the registry for inclusion in a selection prompt: one
// block per tool with its name, description, and argument schema.
func (r *Registry) Describe() string {
	var blocks []string
	for _, name := range r.Names() {
		tool, _ := r.Lookup(name)
		block := fmt.Sprintf("- %s: %s", tool.Name(), tool.Description())
		if schema := tool.Schema(); schema != nil {
			if encoded, err := json.Marshal(schema); err == nil {
				block += "\n  arguments schema: " + string(encoded)
			}
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n")
}

// validateArguments checks the arguments object against the tool's schema.
func validateArguments(tool Tool, args map[string]any) error {
	schema := tool.Schema()
	if len(schema) == 0 {
		return nil
	}
	argBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments for validation: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(argBytes))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("arguments failed validation: %s", strings.Join(details, "; "))
}
