package llm

import (
	"context"
	"fmt"
	"net/http"
	"quiz-forge/internal/domain"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	ServerURL string
	Model     string
	Timeout   time.Duration
}

// LangchainProvider adapts any langchaingo model to domain.ModelProvider. It is
// text-only.
type LangchainProvider struct {
	model   llms.Model
	modelID string
}

// NewLangchainProvider wraps an existing langchaingo model.
func NewLangchainProvider(model llms.Model, modelID string) *LangchainProvider {
	return &LangchainProvider{model: model, modelID: modelID}
}

// NewOllamaProvider connects to an Ollama server through langchaingo.
func NewOllamaProvider(cfg OllamaConfig) (*LangchainProvider, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ollama server URL is required")
	}
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithFormat("json"),
		ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewLangchainProvider(llm, cfg.Model), nil
}

func (p *LangchainProvider) ModelID() string {
	return p.modelID
}

func (p *LangchainProvider) RegisterFile(_ context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	return domain.FileHandle{}, fmt.Errorf("%s: %w", f.OriginalName, domain.ErrFileAttachmentUnsupported)
}

func (p *LangchainProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	text, err := textOnly(req.User)
	if err != nil {
		return nil, err
	}

	resp, err := p.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	})
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrEmptyOutput{Provider: "langchain"}
	}

	return &domain.ModelResponse{Text: stripThinking(resp.Choices[0].Content), Model: p.modelID}, nil
}

// stripThinking removes a leading <think>...</think> block emitted by reasoning
// models served through Ollama.
func stripThinking(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "<think>"); start != -1 {
		if end := strings.Index(s, "</think>"); end > start {
			s = s[:start] + s[end+len("</think>"):]
		}
	}
	return strings.TrimSpace(s)
}

var _ domain.ModelProvider = (*LangchainProvider)(nil)
