package llm

import (
	"context"
	"fmt"

	"github.com/kgraph-ai/kgraph/helper"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator is the single synchronous language-model call used for query
// generation, classification, extraction and answer synthesis.
type Generator interface {
	// Generate produces a completion for the prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Provider returns the configured provider name, e.g. "openai"
	Provider() string

	// Model returns the configured model name
	Model() string
}

// Config selects and authenticates a provider
type Config struct {
	Provider string // openai, anthropic or ollama
	Model    string
	APIKey   string
	BaseURL  string // optional, for OpenAI-compatible endpoints and ollama servers
}

// generator wraps a langchaingo model behind the Generator interface.
// Temperature is pinned to zero so repeated calls are deterministic.
type generator struct {
	llm      llms.Model
	provider string
	model    string
}

// New creates a Generator for the configured provider.
// An unsupported provider name is a configuration error.
func New(config Config) (Generator, error) {
	var (
		client llms.Model
		err    error
	)

	switch config.Provider {
	case "openai":
		opts := []openai.Option{openai.WithToken(config.APIKey)}
		if config.Model != "" {
			opts = append(opts, openai.WithModel(config.Model))
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		client, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithToken(config.APIKey)}
		if config.Model != "" {
			opts = append(opts, anthropic.WithModel(config.Model))
		}
		client, err = anthropic.New(opts...)
	case "ollama":
		opts := []ollama.Option{}
		if config.Model != "" {
			opts = append(opts, ollama.WithModel(config.Model))
		}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		client, err = ollama.New(opts...)
	default:
		return nil, helper.NewError("llm provider", fmt.Errorf("unsupported provider: %s", config.Provider))
	}

	if err != nil {
		return nil, helper.NewError("llm provider", err)
	}

	return &generator{llm: client, provider: config.Provider, model: config.Model}, nil
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", helper.NewError("llm generation", err)
	}
	return completion, nil
}

func (g *generator) Provider() string {
	return g.provider
}

func (g *generator) Model() string {
	return g.model
}

// GenerateFunc adapts a function to the Generator interface; used in tests
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f GenerateFunc) Provider() string { return "test" }

func (f GenerateFunc) Model() string { return "test-model" }
