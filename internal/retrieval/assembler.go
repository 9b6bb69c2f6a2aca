package retrieval

import (
	"sort"

	"github.com/cognify-labs/cognify/internal/domain"
)

// DefaultContextBudget is the default AnswerContext size limit in characters.
const DefaultContextBudget = 4000

// AnswerContext is the bounded, timeline-ordered subset of the corpus handed
// to the generative model, with provenance for citation.
type AnswerContext struct {
	Units      []domain.TextUnit
	TotalChars int
}

// Empty reports whether no entries were accepted.
func (c *AnswerContext) Empty() bool {
	return c == nil || len(c.Units) == 0
}

// Citations returns the provenance of every unit in the context.
func (c *AnswerContext) Citations() []domain.Citation {
	citations := make([]domain.Citation, len(c.Units))
	for i, u := range c.Units {
		citations[i] = domain.Citation{
			Source: u.Source,
			Start:  u.Start,
			End:    u.DisplayEnd(),
		}
	}
	return citations
}

// AssembleContext packs retrieved entries into an AnswerContext within the
// character budget. It accepts entries greedily in rank order, skipping any
// that would overflow, then restores corpus order so the generated answer can
// cite a coherent timeline instead of rank order.
func AssembleContext(results []ScoredEntry, budget int) *AnswerContext {
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	assembled := &AnswerContext{}
	for _, r := range results {
		size := len(r.Entry.Unit.Text)
		if assembled.TotalChars+size > budget {
			continue
		}
		assembled.Units = append(assembled.Units, r.Entry.Unit)
		assembled.TotalChars += size
	}

	sort.SliceStable(assembled.Units, func(i, j int) bool {
		a, b := assembled.Units[i], assembled.Units[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		// Caption before on-screen text at the same instant, matching the
		// merge order of the corpus.
		return a.Source == domain.SourceCaption && b.Source == domain.SourceOnScreenText
	})

	return assembled
}
