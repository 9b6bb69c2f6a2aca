package retrieval

import (
	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
)

// DefaultNeighborWindow is how many adjacent corpus chunks are pulled in on
// each side of a retrieved span.
const DefaultNeighborWindow = 1

// ExpandNeighbors widens each core result with the corpus chunks adjacent to
// it, so the generated answer sees contiguous context instead of isolated
// spans. Core results keep their rank order and scores; added neighbors are
// appended after them unscored, so the context budget favors the ranked
// spans. Overlapping windows contribute each chunk once. Neighbors outside
// the query time range are not added.
func ExpandNeighbors(idx *index.Index, core []ScoredEntry, window int, tr *domain.TimeRange) []ScoredEntry {
	if window <= 0 || len(core) == 0 {
		return core
	}

	ordinals := make(map[string]int, idx.Len())
	for i, entry := range idx.Entries {
		ordinals[entry.ID] = i
	}

	picked := make(map[int]bool, len(core))
	for _, c := range core {
		if ord, ok := ordinals[c.Entry.ID]; ok {
			picked[ord] = true
		}
	}

	expanded := append(make([]ScoredEntry, 0, len(core)), core...)
	for _, c := range core {
		center, ok := ordinals[c.Entry.ID]
		if !ok {
			continue
		}
		for j := center - window; j <= center+window; j++ {
			if j < 0 || j >= len(idx.Entries) || picked[j] {
				continue
			}
			neighbor := idx.Entries[j]
			if tr != nil && !tr.Overlaps(neighbor.Unit) {
				continue
			}
			picked[j] = true
			expanded = append(expanded, ScoredEntry{Entry: neighbor})
		}
	}
	return expanded
}
