package ingest

import "github.com/cognify-labs/cognify/internal/domain"

// MergeTimeline interleaves the caption sequence and the deduplicated
// on-screen text sequence into one timeline ordered by start time. Both
// inputs must already be sorted by start time. On equal start times the
// caption unit comes first: speech is the primary signal at any instant.
func MergeTimeline(captions, screen []domain.TextUnit) []domain.TextUnit {
	merged := make([]domain.TextUnit, 0, len(captions)+len(screen))

	i, j := 0, 0
	for i < len(captions) && j < len(screen) {
		if captions[i].Start <= screen[j].Start {
			merged = append(merged, captions[i])
			i++
		} else {
			merged = append(merged, screen[j])
			j++
		}
	}
	merged = append(merged, captions[i:]...)
	merged = append(merged, screen[j:]...)

	return merged
}
