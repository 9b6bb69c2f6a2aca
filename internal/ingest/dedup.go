package ingest

import (
	"strings"
	"unicode"

	"github.com/cognify-labs/cognify/internal/domain"
)

// DedupConfig controls near-duplicate suppression of on-screen text units.
type DedupConfig struct {
	// Threshold is the minimum similarity ratio at which a candidate is
	// considered a duplicate of the last retained unit.
	Threshold float64
	// Window is the debounce window in seconds. A candidate whose gap since
	// the last retained unit's end exceeds the window is always retained: a
	// slide that reappears later is informative for timeline queries.
	Window float64
}

// DefaultDedupConfig provides sane defaults for slide-sampled OCR streams.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		Threshold: 0.9,
		Window:    8.0,
	}
}

// Deduplicate collapses near-duplicate on-screen text units produced by
// consecutive near-identical key frames. It is a greedy single pass: each
// candidate is compared only to the immediately preceding retained unit,
// which is O(n) and sufficient because slide transitions are rare relative
// to the frame sampling rate. Caption units are never dropped.
func Deduplicate(units []domain.TextUnit, cfg DedupConfig) []domain.TextUnit {
	if len(units) == 0 {
		return nil
	}

	out := make([]domain.TextUnit, 0, len(units))
	anchor := -1 // index into out of the last retained on-screen unit

	for _, u := range units {
		if u.Source != domain.SourceOnScreenText {
			out = append(out, u)
			continue
		}

		if anchor >= 0 {
			retained := out[anchor]
			gap := u.Start - retained.End
			if gap < cfg.Window && TokenSimilarity(retained.Text, u.Text) >= cfg.Threshold {
				continue
			}
		}

		out = append(out, u)
		anchor = len(out) - 1
	}

	return out
}

// TokenSimilarity returns the Dice coefficient of the two texts' token
// multisets, case-insensitive and whitespace-collapsed. 1.0 means identical
// token content, 0.0 means no overlap.
func TokenSimilarity(a, b string) float64 {
	ta := dedupTokens(a)
	tb := dedupTokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	counts := make(map[string]int, len(ta))
	for _, tok := range ta {
		counts[tok]++
	}

	overlap := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}

	return 2.0 * float64(overlap) / float64(len(ta)+len(tb))
}

func dedupTokens(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
