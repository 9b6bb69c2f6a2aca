package retrieval

import (
	"testing"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(text string, start, end, score float64) ScoredEntry {
	return ScoredEntry{
		Entry: &domain.IndexEntry{
			Unit: domain.TextUnit{
				Source: domain.SourceCaption,
				Text:   text,
				Start:  start,
				End:    end,
			},
		},
		Score: score,
	}
}

func TestAssembleContext(t *testing.T) {
	t.Run("restores timeline order after rank-order selection", func(t *testing.T) {
		results := []ScoredEntry{
			scored("late but most relevant", 300, 310, 0.9),
			scored("early and relevant", 10, 20, 0.8),
			scored("middle of the lecture", 150, 160, 0.7),
		}

		ctx := AssembleContext(results, 1000)
		require.Len(t, ctx.Units, 3)
		assert.Equal(t, "early and relevant", ctx.Units[0].Text)
		assert.Equal(t, "middle of the lecture", ctx.Units[1].Text)
		assert.Equal(t, "late but most relevant", ctx.Units[2].Text)
	})

	t.Run("never exceeds the budget", func(t *testing.T) {
		results := []ScoredEntry{
			scored("aaaaaaaaaa", 0, 5, 0.9),  // 10 chars
			scored("bbbbbbbbbb", 10, 15, 0.8), // 10 chars
			scored("cccccccccc", 20, 25, 0.7), // 10 chars
		}

		ctx := AssembleContext(results, 25)
		assert.Len(t, ctx.Units, 2)
		assert.LessOrEqual(t, ctx.TotalChars, 25)
	})

	t.Run("skips oversized entries but keeps packing", func(t *testing.T) {
		results := []ScoredEntry{
			scored("short", 0, 5, 0.9),
			scored("this entry is far too long to fit in the remaining budget", 10, 15, 0.8),
			scored("tiny", 20, 25, 0.7),
		}

		ctx := AssembleContext(results, 12)
		require.Len(t, ctx.Units, 2)
		assert.Equal(t, "short", ctx.Units[0].Text)
		assert.Equal(t, "tiny", ctx.Units[1].Text)
		assert.Equal(t, 9, ctx.TotalChars)
	})

	t.Run("caption precedes on-screen text at equal start", func(t *testing.T) {
		screen := scored("Slide: Ohm's Law", 50, 50, 0.9)
		screen.Entry.Unit.Source = domain.SourceOnScreenText
		caption := scored("as you can see on the slide", 50, 55, 0.8)

		ctx := AssembleContext([]ScoredEntry{screen, caption}, 1000)
		require.Len(t, ctx.Units, 2)
		assert.Equal(t, domain.SourceCaption, ctx.Units[0].Source)
	})

	t.Run("empty input", func(t *testing.T) {
		ctx := AssembleContext(nil, 1000)
		assert.True(t, ctx.Empty())
		assert.Empty(t, ctx.Citations())
	})
}

func TestAnswerContext_Citations(t *testing.T) {
	results := []ScoredEntry{
		scored("a caption", 10, 14, 0.9),
		scored("a slide", 20, 20, 0.8),
	}
	results[1].Entry.Unit.Source = domain.SourceOnScreenText

	ctx := AssembleContext(results, 1000)
	citations := ctx.Citations()
	require.Len(t, citations, 2)

	assert.Equal(t, domain.SourceCaption, citations[0].Source)
	assert.Equal(t, 10.0, citations[0].Start)
	assert.Equal(t, 14.0, citations[0].End)

	// Zero-length slide spans are padded for display.
	assert.Equal(t, domain.SourceOnScreenText, citations[1].Source)
	assert.Equal(t, 20.0, citations[1].Start)
	assert.Equal(t, 21.0, citations[1].End)
}
