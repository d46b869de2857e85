package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"quiz-forge/internal/domain"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 16000

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AnthropicProvider is a text-only provider: uploads always take the SOURCE PACK
// fallback.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	return &AnthropicProvider{client: &client, model: cfg.Model}, nil
}

func (p *AnthropicProvider) ModelID() string {
	return p.model
}

func (p *AnthropicProvider) RegisterFile(_ context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	return domain.FileHandle{}, fmt.Errorf("anthropic: %s: %w", f.OriginalName, domain.ErrFileAttachmentUnsupported)
}

func (p *AnthropicProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	text, err := textOnly(req.User)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	var out []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out = append(out, block.Text)
		}
	}
	return &domain.ModelResponse{Text: strings.TrimSpace(strings.Join(out, "\n")), Model: string(msg.Model)}, nil
}

// textOnly joins the text parts of a user turn. File parts cannot be sent to a
// text-only provider.
func textOnly(parts []domain.ContentPart) (string, error) {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case domain.TextPart:
			texts = append(texts, v.Text)
		case domain.FilePart:
			return "", fmt.Errorf("file part %s: %w", v.Handle.Filename, domain.ErrFileAttachmentUnsupported)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(apiErr.StatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

var _ domain.ModelProvider = (*AnthropicProvider)(nil)
