package ingest

import (
	"strings"

	"github.com/cognify-labs/cognify/internal/domain"
)

// normalizeText trims the fragment text and collapses internal whitespace
// runs to a single space.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// clampConfidence bounds noisy provider confidences into [0,1] rather than
// rejecting them.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NormalizeCaption converts a raw speech-to-text fragment into a validated
// TextUnit. It returns domain.ErrEmptyText for fragments that are empty after
// normalization and domain.ErrEndBeforeStart for inverted spans.
func NormalizeCaption(videoID string, ordinal int, f CaptionFragment) (domain.TextUnit, error) {
	unit := domain.TextUnit{
		ID:         domain.NewTextUnitID(videoID, domain.SourceCaption, ordinal),
		Source:     domain.SourceCaption,
		Text:       normalizeText(f.Text),
		Start:      f.Start,
		End:        f.End,
		Confidence: clampConfidence(f.Confidence),
	}

	if err := domain.ValidateTextUnit(&unit); err != nil {
		return domain.TextUnit{}, err
	}
	return unit, nil
}

// NormalizeFrame converts a raw OCR fragment into a validated TextUnit. The
// frame timestamp becomes both start and end of the unit's span.
func NormalizeFrame(videoID string, ordinal int, f FrameFragment) (domain.TextUnit, error) {
	unit := domain.TextUnit{
		ID:         domain.NewTextUnitID(videoID, domain.SourceOnScreenText, ordinal),
		Source:     domain.SourceOnScreenText,
		Text:       normalizeText(f.Text),
		Start:      f.Timestamp,
		End:        f.Timestamp,
		Confidence: clampConfidence(f.Confidence),
		FrameRef:   f.FrameRef,
	}

	if err := domain.ValidateTextUnit(&unit); err != nil {
		return domain.TextUnit{}, err
	}
	return unit, nil
}

// CoalesceCaptions merges small adjacent caption fragments into chunks of
// roughly maxWords words so retrieval spans are sentence-sized rather than
// subtitle-sized. A chunk spans from its first fragment's start to its last
// fragment's end and carries the minimum confidence of its members.
// maxWords <= 0 disables coalescing.
func CoalesceCaptions(fragments []CaptionFragment, maxWords int) []CaptionFragment {
	if maxWords <= 0 {
		return fragments
	}

	out := make([]CaptionFragment, 0, len(fragments))
	var words []string
	var cur CaptionFragment
	open := false

	flush := func() {
		if !open {
			return
		}
		cur.Text = strings.Join(words, " ")
		out = append(out, cur)
		words = nil
		open = false
	}

	for _, f := range fragments {
		text := normalizeText(f.Text)
		if text == "" {
			continue
		}

		if !open {
			cur = CaptionFragment{Start: f.Start, End: f.End, Confidence: f.Confidence}
			open = true
		} else {
			cur.End = f.End
			if f.Confidence < cur.Confidence {
				cur.Confidence = f.Confidence
			}
		}

		words = append(words, strings.Fields(text)...)
		if len(words) >= maxWords {
			flush()
		}
	}
	flush()

	return out
}
