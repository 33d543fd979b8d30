// internal/pipeline/assembler.go
package pipeline

import "strings"

// documentSeparator joins abstracts in the assembled context.
const documentSeparator = "\n\n"

// Assemble concatenates document summaries in rank order, separated by a
// blank line, stopping before the character budget would be exceeded.
// Documents are included whole or not at all; once one does not fit, it and
// everything after it is dropped. Pure and deterministic.
func Assemble(documents []Document, budget int) (AssembledContext, error) {
	if budget < 0 {
		return AssembledContext{}, &InvalidInputError{Field: "budget", Reason: "must not be negative"}
	}

	var b strings.Builder
	included := 0
	for _, doc := range documents {
		needed := len(doc.Summary)
		if included > 0 {
			needed += len(documentSeparator)
		}
		if b.Len()+needed > budget {
			break
		}
		if included > 0 {
			b.WriteString(documentSeparator)
		}
		b.WriteString(doc.Summary)
		included++
	}

	return AssembledContext{
		Text:          b.String(),
		IncludedCount: included,
		Truncated:     included < len(documents),
	}, nil
}
