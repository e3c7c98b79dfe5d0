package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StructuredResult is the raw row-set produced by executing a generated query
type StructuredResult struct {
	Rows      []map[string]interface{} `json:"rows"`
	Columns   []string                 `json:"columns,omitempty"`
	Truncated bool                     `json:"truncated"`
	Duration  time.Duration            `json:"duration"`
}

// Empty reports whether the query returned no rows
func (r *StructuredResult) Empty() bool {
	return len(r.Rows) == 0
}

// Summary renders a compact textual description of the rows. Used as
// synthesis input and as the answer when synthesis itself degrades.
func (r *StructuredResult) Summary() string {
	if r.Empty() {
		return "The structured query returned no rows."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d rows", len(r.Rows))
	if r.Truncated {
		b.WriteString(" (truncated)")
	}
	b.WriteString(":\n")

	limit := len(r.Rows)
	if limit > 10 {
		limit = 10
	}
	for _, row := range r.Rows[:limit] {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", key, row[key]))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}
	if len(r.Rows) > limit {
		fmt.Fprintf(&b, "... and %d more rows\n", len(r.Rows)-limit)
	}

	return strings.TrimSpace(b.String())
}

// AnswerMetadata carries the provenance and timing of a composite answer
type AnswerMetadata struct {
	Provider          string        `json:"provider"`
	Model             string        `json:"model"`
	PassagesUsed      []Passage     `json:"passages_used,omitempty"`
	ExecutionTimeMs   int64         `json:"execution_time_ms"`
	StructuredSummary string        `json:"structured_summary,omitempty"`
	Truncated         bool          `json:"truncated,omitempty"`
	RetrievalDegraded bool          `json:"retrieval_degraded,omitempty"`
	SynthesisDegraded bool          `json:"synthesis_degraded,omitempty"`
	DegradedReason    string        `json:"degraded_reason,omitempty"`
	QueryDuration     time.Duration `json:"-"`
}

// CompositeAnswer is the final response combining structured and semantic retrieval
type CompositeAnswer struct {
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	GeneratedQuery string         `json:"generated_query,omitempty"`
	Metadata       AnswerMetadata `json:"metadata"`
}
