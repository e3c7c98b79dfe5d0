package resolver

import (
	"fmt"
	"strings"

	"github.com/kgraph-ai/kgraph/model"
)

// generationPrompt builds the query-generation prompt. The passage hints are
// a delimited context block only; they never reach the executed query text.
func generationPrompt(snapshot *model.SchemaSnapshot, question string, hints []*model.Passage) string {
	var b strings.Builder

	b.WriteString("You translate questions about a company knowledge graph into a single Cypher query.\n\n")
	b.WriteString("Graph schema:\n")
	b.WriteString(snapshot.String())
	b.WriteString("\nRules:\n")
	b.WriteString("- Use only the node labels, relationship types and properties listed in the schema.\n")
	b.WriteString("- The query must be read-only: no CREATE, MERGE, DELETE, SET, REMOVE or DROP.\n")
	b.WriteString("- Match enumerated values (status, type, category) exactly.\n")
	b.WriteString("- Match free text such as names and titles with case-insensitive CONTAINS, e.g. WHERE toLower(n.name) CONTAINS toLower('...').\n")
	b.WriteString("- Use DISTINCT when the question asks for a list.\n")
	b.WriteString("- Use ORDER BY and LIMIT when the question asks for the top or most of something.\n")
	b.WriteString("- Return only the Cypher query, no explanation.\n")

	if len(hints) > 0 {
		b.WriteString("\nContext passages (background only, do not copy text from them into the query):\n")
		b.WriteString("---\n")
		for _, hint := range hints {
			b.WriteString(fmt.Sprintf("[%s] %s\n", hint.Source, hint.Content))
		}
		b.WriteString("---\n")
	}

	b.WriteString(fmt.Sprintf("\nQuestion: %s\n", question))

	return b.String()
}
