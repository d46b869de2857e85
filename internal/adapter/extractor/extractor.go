// Package extractor turns uploaded documents into plain text for the SOURCE PACK
// fallback, one ExtractedSource per upload.
package extractor

import (
	"context"
	"fmt"
	"os"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	SkipImage    = "Image OCR not enabled yet."
	SkipNoText   = "No extractable text found."
	skipFailedFn = "Extraction failed: %s"

	packSeparator = "\n\n---\n\n"
)

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	textExtensions  = []string{".txt", ".md", ".csv", ".json"}
)

// Extractor implements domain.SourceExtractor.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

var _ domain.SourceExtractor = (*Extractor)(nil)

// TextFromFile returns the raw text of the file at path, dispatching on ext.
// Unsupported extensions yield an empty string and no error.
func TextFromFile(path, ext string) (string, error) {
	switch {
	case lo.Contains(textExtensions, ext):
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ext == ".pdf":
		return pdfText(path)
	case ext == ".docx":
		return docxText(path)
	case ext == ".pptx":
		return pptxText(path)
	}
	return "", nil
}

// Extract produces the ExtractedSource for one upload. It never fails: problems
// are reported through SkippedReason.
func (e *Extractor) Extract(ctx context.Context, f domain.UploadedFile) domain.ExtractedSource {
	src := domain.ExtractedSource{Filename: f.OriginalName}
	ext := f.Ext()

	if lo.Contains(imageExtensions, ext) {
		src.SkippedReason = SkipImage
		return src
	}
	if err := ctx.Err(); err != nil {
		src.SkippedReason = fmt.Sprintf(skipFailedFn, err.Error())
		return src
	}

	text, err := TextFromFile(f.Path, ext)
	if err != nil {
		logger.Get().Debug("text extraction failed",
			zap.String("file", f.OriginalName),
			zap.Error(err))
		src.SkippedReason = fmt.Sprintf(skipFailedFn, err.Error())
		return src
	}
	if strings.TrimSpace(text) == "" {
		src.SkippedReason = SkipNoText
		return src
	}
	src.Text = text
	return src
}

// BuildSourcePack extracts every file in order and concatenates the results into
// a single labelled text block.
func (e *Extractor) BuildSourcePack(ctx context.Context, files []domain.UploadedFile) (string, []domain.ExtractedSource) {
	sources := make([]domain.ExtractedSource, 0, len(files))
	for _, f := range files {
		sources = append(sources, e.Extract(ctx, f))
	}
	return FormatSourcePack(sources), sources
}

// FormatSourcePack renders extracted sources as "FILE: <name>" sections.
func FormatSourcePack(sources []domain.ExtractedSource) string {
	sections := lo.Map(sources, func(s domain.ExtractedSource, _ int) string {
		if s.Text != "" {
			return "FILE: " + s.Filename + "\n" + s.Text
		}
		reason := s.SkippedReason
		if reason == "" {
			reason = "No text"
		}
		return "FILE: " + s.Filename + "\n[SKIPPED] " + reason
	})
	return strings.Join(sections, packSeparator)
}
