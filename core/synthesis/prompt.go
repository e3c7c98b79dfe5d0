package synthesis

import (
	"fmt"
	"strings"

	"github.com/kgraph-ai/kgraph/model"
)

// synthesisPrompt builds the answer-composition prompt. The conflict policy
// lives here: document passages win on policy and normative statements, the
// structured result wins on counts and current facts, and disagreement
// between the two is surfaced rather than hidden.
func synthesisPrompt(question string, structuredSummary string, passages []*model.Passage) string {
	var b strings.Builder

	b.WriteString("You answer questions about a company using its knowledge graph and document archive.\n\n")
	b.WriteString(fmt.Sprintf("Question: %s\n\n", question))

	b.WriteString("Structured query result:\n")
	b.WriteString(structuredSummary)
	b.WriteString("\n")

	if len(passages) > 0 {
		b.WriteString("\nDocument passages:\n")
		b.WriteString("---\n")
		for _, passage := range passages {
			b.WriteString(fmt.Sprintf("[%s] %s\n", passage.Source, passage.Content))
		}
		b.WriteString("---\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Answer the question directly and concisely.\n")
	b.WriteString("- Prefer the document passages for policy and rules, and the structured result for counts and current facts.\n")
	b.WriteString("- If the structured result and the passages disagree, say so and give both.\n")
	b.WriteString("- Do not invent facts that appear in neither source.\n")

	return b.String()
}
