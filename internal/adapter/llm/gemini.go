package llm

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"quiz-forge/internal/domain"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiDocumentTypes are the MIME types the Gemini file store accepts as
// document context. Anything else takes the text fallback.
var geminiDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/md",
	".csv":  "text/csv",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiProvider implements domain.ModelProvider on the Gemini API, attaching
// uploads through the Files API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func geminiMIMEType(f domain.UploadedFile) (string, bool) {
	if mt, ok := geminiDocumentTypes[f.Ext()]; ok {
		return mt, true
	}
	if mt := mime.TypeByExtension(f.Ext()); strings.HasPrefix(mt, "text/") {
		return mt, true
	}
	return "", false
}

func (p *GeminiProvider) RegisterFile(ctx context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	mimeType, ok := geminiMIMEType(f)
	if !ok {
		return domain.FileHandle{}, fmt.Errorf("%s: %w", f.OriginalName, domain.ErrFileAttachmentUnsupported)
	}

	file, err := p.client.Files.UploadFromPath(ctx, f.Path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: f.OriginalName,
	})
	if err != nil {
		return domain.FileHandle{}, fmt.Errorf("register %s: %w", f.OriginalName, mapGeminiError(err))
	}
	return domain.FileHandle{ID: file.Name, URI: file.URI, MIMEType: file.MIMEType, Filename: f.OriginalName}, nil
}

func (p *GeminiProvider) ReleaseFile(ctx context.Context, h domain.FileHandle) error {
	_, err := p.client.Files.Delete(ctx, h.ID, nil)
	return err
}

func (p *GeminiProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		ResponseMIMEType:  "application/json",
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(req.User), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return &domain.ModelResponse{Text: strings.TrimSpace(result.Text()), Model: p.model}, nil
}

func buildGeminiContents(user []domain.ContentPart) []*genai.Content {
	parts := make([]*genai.Part, 0, len(user))
	for _, part := range user {
		switch v := part.(type) {
		case domain.TextPart:
			parts = append(parts, genai.NewPartFromText(v.Text))
		case domain.FilePart:
			parts = append(parts, genai.NewPartFromURI(v.Handle.URI, v.Handle.MIMEType))
		}
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return statusError(apiErrPtr.Code, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

var (
	_ domain.ModelProvider = (*GeminiProvider)(nil)
	_ domain.FileReleaser  = (*GeminiProvider)(nil)
)
