package answer

import (
	"fmt"
	"strings"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/retrieval"
)

const systemPrompt = "You are an expert teaching assistant helping a student understand " +
	"material from a lecture video. You are given relevant lecture excerpts with " +
	"timestamps: spoken transcript segments and text captured from slides shown " +
	"on screen. Use those excerpts as the primary source of truth. You may use " +
	"general textbook knowledge to clarify concepts, but never contradict the excerpts."

// BuildPrompts renders the system and user prompts for one query. Context
// units are numbered and timestamped so the model can point the student back
// at specific moments in the video.
func BuildPrompts(question string, actx *retrieval.AnswerContext) (string, string) {
	var b strings.Builder
	for i, u := range actx.Units {
		label := "spoken"
		if u.Source == domain.SourceOnScreenText {
			label = "on screen"
		}
		fmt.Fprintf(&b, "[%d] %.1f-%.1fs (%s) :: %s\n", i+1, u.Start, u.DisplayEnd(), label, u.Text)
	}

	user := fmt.Sprintf(
		"Student question:\n%s\n\n"+
			"Relevant lecture excerpts:\n%s\n"+
			"Instructions:\n"+
			"- Answer the question clearly in your own words.\n"+
			"- Base the explanation primarily on the excerpts above.\n"+
			"- End with a short line: 'Segments to rewatch: [excerpt numbers]'.",
		question, b.String(),
	)

	return systemPrompt, user
}
