package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Chain adapts a langchaingo model to Completer.
type Chain struct {
	model llms.Model
	name  string
}

// NewChain wraps m; name is used in error messages.
func NewChain(m llms.Model, name string) *Chain {
	return &Chain{model: m, name: name}
}

func (c *Chain) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", c.name, err)
	}
	return out, nil
}
