package ingest

import (
	"testing"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCaption(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		unit, err := NormalizeCaption("vid1", 0, CaptionFragment{
			Text:       "  Ohm's   Law \t states\n that  V equals IR ",
			Start:      15.0,
			End:        22.0,
			Confidence: 0.9,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ohm's Law states that V equals IR", unit.Text)
		assert.Equal(t, domain.SourceCaption, unit.Source)
		assert.Equal(t, 15.0, unit.Start)
		assert.Equal(t, 22.0, unit.End)
		assert.Equal(t, 0.9, unit.Confidence)
		assert.Empty(t, unit.FrameRef)
	})

	t.Run("drops empty text", func(t *testing.T) {
		_, err := NormalizeCaption("vid1", 0, CaptionFragment{Text: "   \n\t ", Start: 1, End: 2})
		assert.ErrorIs(t, err, domain.ErrEmptyText)
	})

	t.Run("rejects inverted span", func(t *testing.T) {
		_, err := NormalizeCaption("vid1", 0, CaptionFragment{Text: "hello", Start: 10, End: 5})
		assert.ErrorIs(t, err, domain.ErrEndBeforeStart)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		unit, err := NormalizeCaption("vid1", 0, CaptionFragment{Text: "hello", Start: 1, End: 2, Confidence: 1.4})
		require.NoError(t, err)
		assert.Equal(t, 1.0, unit.Confidence)

		unit, err = NormalizeCaption("vid1", 1, CaptionFragment{Text: "hello", Start: 1, End: 2, Confidence: -0.1})
		require.NoError(t, err)
		assert.Equal(t, 0.0, unit.Confidence)
	})

	t.Run("deterministic IDs per ordinal", func(t *testing.T) {
		a, err := NormalizeCaption("vid1", 3, CaptionFragment{Text: "hello", Start: 1, End: 2})
		require.NoError(t, err)
		b, err := NormalizeCaption("vid1", 3, CaptionFragment{Text: "hello", Start: 1, End: 2})
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
	})
}

func TestNormalizeFrame(t *testing.T) {
	t.Run("zero-length span at frame timestamp", func(t *testing.T) {
		unit, err := NormalizeFrame("vid1", 0, FrameFragment{
			FrameRef:  "frame_0042",
			Text:      "Ohm's Law: V = IR",
			Timestamp: 120.5,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SourceOnScreenText, unit.Source)
		assert.Equal(t, 120.5, unit.Start)
		assert.Equal(t, 120.5, unit.End)
		assert.Equal(t, "frame_0042", unit.FrameRef)
	})

	t.Run("drops empty-text frames", func(t *testing.T) {
		_, err := NormalizeFrame("vid1", 0, FrameFragment{FrameRef: "frame_0001", Timestamp: 5})
		assert.ErrorIs(t, err, domain.ErrEmptyText)
	})
}

func TestCoalesceCaptions(t *testing.T) {
	fragments := []CaptionFragment{
		{Text: "one two three", Start: 0, End: 2, Confidence: 0.9},
		{Text: "four five", Start: 2, End: 4, Confidence: 0.8},
		{Text: "six seven eight", Start: 4, End: 6, Confidence: 0.95},
		{Text: "nine", Start: 6, End: 7, Confidence: 0.7},
	}

	t.Run("merges up to max words", func(t *testing.T) {
		out := CoalesceCaptions(fragments, 5)
		require.Len(t, out, 2)

		assert.Equal(t, "one two three four five", out[0].Text)
		assert.Equal(t, 0.0, out[0].Start)
		assert.Equal(t, 4.0, out[0].End)
		assert.Equal(t, 0.8, out[0].Confidence)

		assert.Equal(t, "six seven eight nine", out[1].Text)
		assert.Equal(t, 4.0, out[1].Start)
		assert.Equal(t, 7.0, out[1].End)
	})

	t.Run("skips empty fragments", func(t *testing.T) {
		out := CoalesceCaptions([]CaptionFragment{
			{Text: "  ", Start: 0, End: 1},
			{Text: "hello world", Start: 1, End: 2},
		}, 50)
		require.Len(t, out, 1)
		assert.Equal(t, "hello world", out[0].Text)
		assert.Equal(t, 1.0, out[0].Start)
	})

	t.Run("disabled when maxWords is zero", func(t *testing.T) {
		out := CoalesceCaptions(fragments, 0)
		assert.Equal(t, fragments, out)
	})
}
