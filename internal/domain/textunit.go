package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Source identifies which extraction stream produced a TextUnit.
type Source string

const (
	SourceCaption      Source = "caption"
	SourceOnScreenText Source = "on_screen_text"
)

// minDisplaySpan is the minimum span, in seconds, reported for zero-length
// units. It affects presentation only, never ordering.
const minDisplaySpan = 1.0

// TextUnit is one timestamped fragment of text from either the speech
// transcript or on-screen recognition. Once merged into a Corpus it is
// immutable.
type TextUnit struct {
	ID         string
	Source     Source
	Text       string
	Start      float64 // seconds from video start
	End        float64
	Confidence float64 // clamped to [0,1] by the normalizer
	FrameRef   string  // originating key frame, on-screen text only
}

// NewTextUnitID derives a deterministic unit ID from the video, stream, and
// the unit's ordinal within that stream. Re-ingesting the same input yields
// the same IDs, which keeps indexing idempotent.
func NewTextUnitID(videoID string, source Source, ordinal int) string {
	name := fmt.Sprintf("%s/%s/%d", videoID, source, ordinal)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// DisplayEnd returns the end timestamp padded to the minimum display span.
// The stored End is never altered.
func (u TextUnit) DisplayEnd() float64 {
	if u.End-u.Start < minDisplaySpan {
		return u.Start + minDisplaySpan
	}
	return u.End
}

// ValidateTextUnit validates a TextUnit instance
func ValidateTextUnit(u *TextUnit) error {
	if u == nil {
		return fmt.Errorf("text unit cannot be nil")
	}

	if u.Text == "" {
		return ErrEmptyText
	}

	if u.End < u.Start {
		return ErrEndBeforeStart
	}

	if u.Source != SourceCaption && u.Source != SourceOnScreenText {
		return ErrInvalidSource
	}

	if u.Confidence < 0 || u.Confidence > 1 {
		return NewDomainError(ErrCodeValidation, fmt.Sprintf("confidence %f outside [0,1]", u.Confidence))
	}

	return nil
}
