// internal/pipeline/assembler_test.go
package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func docs(summaries ...string) []Document {
	out := make([]Document, len(summaries))
	for i, s := range summaries {
		out[i] = Document{Summary: s, Rank: i}
	}
	return out
}

func TestAssembleWithinBudget(t *testing.T) {
	t.Parallel()

	got, err := Assemble(docs("Doc A about zeta functions.", "Doc B about prime numbers."), 1000)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	want := "Doc A about zeta functions.\n\nDoc B about prime numbers."
	if got.Text != want {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.IncludedCount != 2 || got.Truncated {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAssembleDropsTail(t *testing.T) {
	t.Parallel()

	input := docs("aaaa", "bbbb", "cccc")
	got, err := Assemble(input, 10)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	// "aaaa" + "\n\n" + "bbbb" is exactly 10; "cccc" no longer fits.
	if got.Text != "aaaa\n\nbbbb" || got.IncludedCount != 2 || !got.Truncated {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAssembleZeroDocuments(t *testing.T) {
	t.Parallel()

	got, err := Assemble(nil, 1000)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if got.Text != "" || got.IncludedCount != 0 || got.Truncated {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAssembleFirstDocumentExceedsBudget(t *testing.T) {
	t.Parallel()

	got, err := Assemble(docs(strings.Repeat("x", 50)), 10)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if got.Text != "" || got.IncludedCount != 0 || !got.Truncated {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAssembleNegativeBudget(t *testing.T) {
	t.Parallel()

	_, err := Assemble(docs("a"), -1)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}

// TestAssembleBudgetProperty checks, across a grid of inputs, that the text
// never exceeds the budget and that the included count is the maximal prefix
// that fits.
func TestAssembleBudgetProperty(t *testing.T) {
	t.Parallel()

	inputs := [][]Document{
		docs(),
		docs(""),
		docs("a"),
		docs("abc", "de", "fghi"),
		docs(strings.Repeat("x", 30), "y", strings.Repeat("z", 5)),
		docs("one", "two", "three", "four", "five"),
	}
	for _, input := range inputs {
		for budget := 0; budget <= 40; budget++ {
			got, err := Assemble(input, budget)
			if err != nil {
				t.Fatalf("Assemble(%v, %d) error: %v", input, budget, err)
			}
			if len(got.Text) > budget {
				t.Fatalf("budget exceeded: %d chars for budget %d", len(got.Text), budget)
			}
			if got.IncludedCount > len(input) {
				t.Fatalf("included %d of %d documents", got.IncludedCount, len(input))
			}
			// Maximality: the next document must not have fit.
			if got.IncludedCount < len(input) {
				next := input[got.IncludedCount].Summary
				needed := len(got.Text) + len(next)
				if got.IncludedCount > 0 {
					needed += len(documentSeparator)
				}
				if needed <= budget {
					t.Fatalf("document %d would have fit in budget %d: %+v", got.IncludedCount, budget, got)
				}
				if !got.Truncated {
					t.Fatalf("expected truncated=true when documents dropped: %+v", got)
				}
			} else if got.Truncated {
				t.Fatalf("expected truncated=false when all documents fit: %+v", got)
			}
		}
	}
}

// TestAssembleIdempotent verifies assembly is a pure function of its inputs.
func TestAssembleIdempotent(t *testing.T) {
	t.Parallel()

	input := docs("Doc A about zeta functions.", "Doc B about prime numbers.")
	first, err := Assemble(input, 40)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	second, err := Assemble(input, 40)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if first != second {
		t.Fatalf("assembly not deterministic: %+v vs %+v", first, second)
	}
}
