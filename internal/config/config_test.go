package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMConfig_ActiveCredentials(t *testing.T) {
	cfg := LLMConfig{
		Provider: "gemini",
		Gemini:   ProviderCredentials{APIKey: "g-key", Model: "gemini-2.0-flash"},
		XAI:      ProviderCredentials{APIKey: "x-key"},
	}

	creds := cfg.ActiveCredentials()
	assert.Equal(t, "g-key", creds.APIKey)
	assert.Equal(t, "gemini-2.0-flash", creds.Model)

	cfg.Model = "gemini-2.5-pro"
	assert.Equal(t, "gemini-2.5-pro", cfg.ActiveCredentials().Model)
}

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMConfig
		wantErr string
	}{
		{"xai with key", LLMConfig{Provider: "xai", XAI: ProviderCredentials{APIKey: "k"}}, ""},
		{"xai without key", LLMConfig{Provider: "xai"}, "api key is required for the xai provider"},
		{"ollama with url", LLMConfig{Provider: "ollama", Ollama: ProviderCredentials{BaseURL: "http://localhost:11434"}}, ""},
		{"ollama without url", LLMConfig{Provider: "ollama"}, "base_url is required"},
		{"unknown", LLMConfig{Provider: "mystery"}, "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
