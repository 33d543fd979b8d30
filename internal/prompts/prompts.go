// Package prompts holds the fixed prompt templates used by the answer
// pipeline. Templates are plain text with named {slot} placeholders.
package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

var slotPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Template is a parameterized prompt with named slots.
type Template struct {
	Name string
	Text string
}

// Render substitutes every {slot} in the template. Every slot must be
// provided; unused values are an error so template and call site stay in sync.
func (t Template) Render(vars map[string]string) (string, error) {
	used := make(map[string]bool, len(vars))
	var missing []string

	out := slotPattern.ReplaceAllStringFunc(t.Text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		used[key] = true
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: missing slots: %s", t.Name, strings.Join(missing, ", "))
	}
	for key := range vars {
		if !used[key] {
			return "", fmt.Errorf("prompt %q: unknown slot %q", t.Name, key)
		}
	}
	return out, nil
}

// Slots returns the distinct slot names in template order.
func (t Template) Slots() []string {
	var slots []string
	seen := make(map[string]bool)
	for _, match := range slotPattern.FindAllStringSubmatch(t.Text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			slots = append(slots, match[1])
		}
	}
	return slots
}

// Expansion rewrites a raw query into a disjunction of related search terms.
var Expansion = Template{
	Name: "expansion",
	Text: `You are a language model trained to perform query expansion. Given a query, you are expected to add synonyms. Here are some examples:

Query: What is Shor's algorithm?
Expanded query: Shor's algorithm OR factorization OR Peter Shor OR quantum computing OR quantum algorithm

Query: What is the Higgs boson?
Expanded query: Higgs boson OR Higgs particle OR Standard Model OR particle physics OR CERN OR Large Hadron Collider OR elementary particle

Query: Riemann hypothesis
Expanded query: Riemann hypothesis OR Riemann zeta function OR prime number theorem OR analytic continuation OR complex analysis OR Bernhard Riemann OR number theory

Query: What is the P versus NP problem?
Expanded query: P versus NP problem OR computational complexity theory OR polynomial time OR NP-hard OR NP-complete OR NP-intermediate OR Boolean satisfiability problem

Query: Navier-Stokes equation
Expanded query: Navier-Stokes equation OR fluid dynamics OR partial differential equation OR fluid mechanics OR turbulence OR incompressible flow OR viscous flow

Query: {query}
Expanded query:`,
}

// Answer grounds the final response in retrieved abstracts. The model is
// instructed to disclose when it falls back on its own knowledge.
var Answer = Template{
	Name: "answer",
	Text: `You are a research professor at Harvard University. Please use these abstracts to provide a response to the user's query. If the information is not in the abstracts, you may use your own knowledge but you need to explicitly state that you are doing so.

Abstracts:

{abstracts}

Query: {expanded_query}
Answer:`,
}

// ToolSelection asks the model to pick one tool and arguments as JSON.
var ToolSelection = Template{
	Name: "tool_selection",
	Text: `You are a research assistant that answers by calling tools. Choose exactly one of the tools below for the user's question and reply with a single JSON object of the form {"tool": "<name>", "arguments": {...}} and nothing else.

Available tools:

{tools}

Question: {query}`,
}
