// Package llm provides the text-completion backends used for time entry
// suggestions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Tiliavir/clicktime-assistant/internal/config"
)

// Completer turns a single-turn prompt into the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// ErrNoAPIKey is returned when the configured provider needs a key and none
// is set.
var ErrNoAPIKey = errors.New("llm: AI API key is not set (export AI_API_KEY)")

// StatusError is a non-2xx response from a completion endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: completion failed with status %d: %s", e.Code, e.Body)
}

// Provider names accepted in llm.provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

var defaultModels = map[string]string{
	ProviderGemini:    config.DefaultGeminiModel,
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderOllama:    "llama3.1",
}

// New builds the Completer for cfg. hc may be nil.
func New(cfg config.LLMConfig, hc *http.Client) (Completer, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if provider != ProviderOllama && cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	switch provider {
	case ProviderGemini:
		g, err := NewGemini(cfg.APIKey, model, cfg.BaseURL, hc)
		if err != nil {
			return nil, err
		}
		return g, nil

	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(model),
			openai.WithHTTPClient(hc),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return NewChain(m, model), nil

	case ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(model),
			anthropic.WithHTTPClient(hc),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		m, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
		return NewChain(m, model), nil

	case ProviderOllama:
		opts := []ollama.Option{
			ollama.WithModel(model),
			ollama.WithHTTPClient(hc),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		return NewChain(m, model), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
