package llm

import (
	"context"
	"fmt"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
)

// NewProvider creates the configured provider wrapped with call logging.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (domain.ModelProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	creds := cfg.ActiveCredentials()

	var (
		base domain.ModelProvider
		err  error
	)
	switch cfg.Provider {
	case "xai":
		base, err = NewResponsesProvider(ResponsesConfig{
			Name:    "xai",
			APIKey:  creds.APIKey,
			BaseURL: orDefault(creds.BaseURL, XAIBaseURL),
			Model:   orDefault(creds.Model, XAIDefaultModel),
			Timeout: cfg.Timeout,
		})
	case "openai":
		base, err = NewResponsesProvider(ResponsesConfig{
			Name:    "openai",
			APIKey:  creds.APIKey,
			BaseURL: creds.BaseURL,
			Model:   creds.Model,
			Timeout: cfg.Timeout,
		})
	case "gemini":
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: creds.APIKey, Model: creds.Model, Timeout: cfg.Timeout})
	case "anthropic":
		base, err = NewAnthropicProvider(AnthropicConfig{APIKey: creds.APIKey, Model: creds.Model, Timeout: cfg.Timeout})
	case "ollama":
		base, err = NewOllamaProvider(OllamaConfig{ServerURL: creds.BaseURL, Model: creds.Model, Timeout: cfg.Timeout})
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
