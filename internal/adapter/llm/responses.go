package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"quiz-forge/internal/domain"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

const (
	XAIBaseURL      = "https://api.x.ai/v1"
	XAIDefaultModel = "grok-4-1-fast-non-reasoning"

	filePurposeUserData = "user_data"
)

// ResponsesConfig configures a provider speaking the OpenAI files + responses API.
type ResponsesConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ResponsesProvider registers uploads through the files API and invokes the model
// through POST /responses. xAI and OpenAI both speak this protocol.
type ResponsesProvider struct {
	name   string
	model  string
	files  *openai.Client
	client *resty.Client
}

// NewResponsesProvider creates a provider for an OpenAI-compatible endpoint.
func NewResponsesProvider(cfg ResponsesConfig) (*ResponsesProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model is required", cfg.Name)
	}

	filesCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		filesCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	filesCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	client := resty.New().
		SetBaseURL(filesCfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &ResponsesProvider{
		name:   cfg.Name,
		model:  cfg.Model,
		files:  openai.NewClientWithConfig(filesCfg),
		client: client,
	}, nil
}

func (p *ResponsesProvider) ModelID() string {
	return p.model
}

func (p *ResponsesProvider) RegisterFile(ctx context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	file, err := p.files.CreateFile(ctx, openai.FileRequest{
		FileName: f.OriginalName,
		FilePath: f.Path,
		Purpose:  filePurposeUserData,
	})
	if err != nil {
		return domain.FileHandle{}, fmt.Errorf("register %s: %w", f.OriginalName, mapOpenAIError(err))
	}
	return domain.FileHandle{ID: file.ID, Filename: f.OriginalName, MIMEType: f.MIMEType}, nil
}

func (p *ResponsesProvider) ReleaseFile(ctx context.Context, h domain.FileHandle) error {
	return p.files.DeleteFile(ctx, h.ID)
}

type responsesRequest struct {
	Model string             `json:"model"`
	Input []responsesMessage `json:"input"`
}

type responsesMessage struct {
	Role    string           `json:"role"`
	Content []responsesInput `json:"content"`
}

type responsesInput struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

func buildResponsesRequest(model string, req domain.ModelRequest) responsesRequest {
	user := make([]responsesInput, 0, len(req.User))
	for _, part := range req.User {
		switch v := part.(type) {
		case domain.TextPart:
			user = append(user, responsesInput{Type: "input_text", Text: v.Text})
		case domain.FilePart:
			user = append(user, responsesInput{Type: "input_file", FileID: v.Handle.ID})
		}
	}
	return responsesRequest{
		Model: model,
		Input: []responsesMessage{
			{Role: "system", Content: []responsesInput{{Type: "input_text", Text: req.System}}},
			{Role: "user", Content: user},
		},
	}
}

func (p *ResponsesProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(buildResponsesRequest(p.model, req)).
		Post("/responses")
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), fmt.Errorf("%s responses API: %s: %s", p.name, resp.Status(), truncate(resp.String(), 500)))
	}

	text, err := ExtractOutputText(resp.Body())
	if err != nil {
		return nil, &ErrProviderUnavailable{StatusCode: resp.StatusCode(), Err: err}
	}
	return &domain.ModelResponse{Text: text, Model: p.model}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ domain.ModelProvider = (*ResponsesProvider)(nil)
	_ domain.FileReleaser  = (*ResponsesProvider)(nil)
)
