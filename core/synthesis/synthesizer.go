package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
)

// Synthesizer combines the structured query result with retrieved passages
// into one natural-language answer.
type Synthesizer struct {
	generator llm.Generator
	log       *slog.Logger
}

// NewSynthesizer creates a new Synthesizer
func NewSynthesizer(generator llm.Generator, logger *slog.Logger) (*Synthesizer, error) {
	if generator == nil {
		return nil, helper.NewError("synthesizer validation", fmt.Errorf("generator is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{generator: generator, log: logger}, nil
}

// Synthesize produces the answer text. By the time both retrieval paths have
// run, enough material exists to answer something, so synthesis never fails
// the request: when the model call errors or returns nothing, the structured
// summary becomes the answer and the degraded flag is set.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, structuredSummary string, passages []*model.Passage) (string, bool) {
	prompt := synthesisPrompt(question, structuredSummary, passages)

	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("Answer synthesis degraded, falling back to structured summary",
			slog.String("question", question),
			slog.String("error", err.Error()),
		)
		return structuredSummary, true
	}

	answer := strings.TrimSpace(response)
	if answer == "" {
		s.log.Warn("Answer synthesis returned empty output, falling back to structured summary",
			slog.String("question", question),
		)
		return structuredSummary, true
	}

	return answer, false
}
