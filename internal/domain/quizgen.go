package domain

import (
	"context"
	"path/filepath"
	"strings"
)

// UploadedFile is a user upload held on local disk for the duration of one request.
type UploadedFile struct {
	OriginalName string
	Path         string
	Size         int64
	MIMEType     string
}

// Ext returns the lowercase extension of the original filename, including the dot.
func (f UploadedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.OriginalName))
}

// ExtractedSource is the plain-text view of one upload. SkippedReason is set when no
// usable text could be produced.
type ExtractedSource struct {
	Filename      string `json:"filename"`
	Text          string `json:"text"`
	SkippedReason string `json:"skipped_reason,omitempty"`
}

// SourceMode tells whether the model request carries file references or inlined text.
type SourceMode string

const (
	SourceModeFiles SourceMode = "files"
	SourceModeText  SourceMode = "text"
)

// SourceExtractor converts uploads to text for the fallback path.
type SourceExtractor interface {
	BuildSourcePack(ctx context.Context, files []UploadedFile) (string, []ExtractedSource)
}

// FileHandle is the provider's opaque reference to a registered file.
type FileHandle struct {
	ID       string
	URI      string
	MIMEType string
	Filename string
}

// ContentPart is one element of the user turn: text or a file reference.
type ContentPart interface {
	isContentPart()
}

// TextPart is literal text in the user turn.
type TextPart struct {
	Text string
}

// FilePart references a file previously registered with the provider.
type FilePart struct {
	Handle FileHandle
}

func (TextPart) isContentPart() {}
func (FilePart) isContentPart() {}

// ModelRequest is one single-turn model invocation: system instructions plus a user
// turn that may mix text and file references.
type ModelRequest struct {
	System string
	User   []ContentPart
}

// ModelResponse carries the normalized output text of a model invocation.
type ModelResponse struct {
	Text  string
	Model string
}

// ModelProvider is the LLM boundary consumed by quiz generation.
type ModelProvider interface {
	// RegisterFile uploads f to the provider's file store. Providers without a file
	// store return ErrFileAttachmentUnsupported.
	RegisterFile(ctx context.Context, f UploadedFile) (FileHandle, error)

	// Generate submits the request and returns its normalized output text.
	Generate(ctx context.Context, req ModelRequest) (*ModelResponse, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// FileReleaser is implemented by providers that can delete registered files.
type FileReleaser interface {
	ReleaseFile(ctx context.Context, h FileHandle) error
}
