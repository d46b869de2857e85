package service

import (
	"context"
	"errors"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/metrics"
	"quiz-forge/internal/prompt"
	"quiz-forge/internal/tracing"
	"quiz-forge/internal/validation"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	NoteAttachFailed = "Some files could not be attached; using SOURCE PACK text instead."
	NoteNoText       = "No extractable text found; quiz may be empty."

	releaseTimeout = 30 * time.Second
)

// GenerateRequest is one validated generation request.
type GenerateRequest struct {
	Files         []domain.UploadedFile
	QuizType      domain.QuizType
	QuestionCount int
	Difficulty    string
}

// GenerationResult is the outcome of a generation that reached the model. When
// OK is false, Error explains the output-shape failure and Raw holds the model
// output unchanged.
type GenerationResult struct {
	OK         bool
	Quiz       *domain.Quiz
	Raw        string
	Error      string
	SourceMode domain.SourceMode
	SourceNote string
	Extracted  []domain.ExtractedSource
}

// SourceSelection is the source material chosen for the model request.
type SourceSelection struct {
	Mode    domain.SourceMode
	Note    string
	Content []domain.ContentPart
	Handles []domain.FileHandle
}

// FilesSource attaches every registered file by reference.
func FilesSource(handles []domain.FileHandle) SourceSelection {
	content := make([]domain.ContentPart, 0, len(handles))
	for _, h := range handles {
		content = append(content, domain.FilePart{Handle: h})
	}
	return SourceSelection{Mode: domain.SourceModeFiles, Content: content, Handles: handles}
}

// TextSource inlines the extracted SOURCE PACK.
func TextSource(pack string) SourceSelection {
	note := NoteAttachFailed
	if strings.TrimSpace(pack) == "" {
		note = NoteNoText
	}
	return SourceSelection{
		Mode:    domain.SourceModeText,
		Note:    note,
		Content: []domain.ContentPart{domain.TextPart{Text: "SOURCE PACK\n" + pack}},
	}
}

// QuizGenerationService turns uploaded documents into a validated quiz.
type QuizGenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error)
}

type quizGenerationService struct {
	provider  domain.ModelProvider
	extractor domain.SourceExtractor
}

// NewQuizGenerationService creates a new instance of quizGenerationService
func NewQuizGenerationService(provider domain.ModelProvider, extractor domain.SourceExtractor) QuizGenerationService {
	return &quizGenerationService{provider: provider, extractor: extractor}
}

// Generate invokes the model exactly once. Model invocation failures are
// returned as errors; output that fails validation is reported through the
// result with OK false.
func (s *quizGenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	start := time.Now()
	ctx, span := tracing.Tracer().Start(ctx, "quiz.generate", trace.WithAttributes(
		attribute.String("quiz.type", string(req.QuizType)),
		attribute.Int("quiz.question_count", req.QuestionCount),
		attribute.Int("quiz.files", len(req.Files)),
	))
	defer span.End()

	selection, extracted := s.selectSource(ctx, req.Files)
	defer s.releaseFiles(ctx, selection.Handles)
	span.SetAttributes(attribute.String("quiz.source_mode", string(selection.Mode)))

	userPrompt := prompt.UserPrompt(prompt.Params{
		QuizType:      req.QuizType,
		QuestionCount: req.QuestionCount,
		Difficulty:    req.Difficulty,
		SourceMode:    selection.Mode,
		SourceNote:    selection.Note,
	})
	modelReq := domain.ModelRequest{
		System: prompt.SystemPrompt(),
		User:   append([]domain.ContentPart{domain.TextPart{Text: userPrompt}}, selection.Content...),
	}

	resp, err := s.provider.Generate(ctx, modelReq)
	if err != nil {
		metrics.ObserveGeneration(string(selection.Mode), metrics.OutcomeModelError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "model invocation failed")
		return nil, domain.NewLLMServiceError(err)
	}

	result := &GenerationResult{
		Raw:        resp.Text,
		SourceMode: selection.Mode,
		SourceNote: selection.Note,
		Extracted:  extracted,
	}

	quiz, err := validation.ParseQuiz(resp.Text)
	if err != nil {
		var shapeErr *domain.OutputShapeError
		if !errors.As(err, &shapeErr) {
			span.RecordError(err)
			return nil, domain.NewInternalError("Failed to validate model output", err)
		}
		logger.Get().Warn("model output failed validation",
			zap.String("source_mode", string(selection.Mode)),
			zap.String("error", shapeErr.Message),
			zap.Int("raw_length", len(resp.Text)))
		metrics.ObserveGeneration(string(selection.Mode), metrics.OutcomeInvalidShape, time.Since(start))
		span.SetStatus(codes.Error, "invalid model output")
		result.Error = shapeErr.UserMessage()
		return result, nil
	}

	metrics.ObserveGeneration(string(selection.Mode), metrics.OutcomeOK, time.Since(start))
	span.SetAttributes(attribute.Int("quiz.questions", len(quiz.Questions)))
	logger.Get().Info("quiz generated",
		zap.String("source_mode", string(selection.Mode)),
		zap.String("quiz_type", string(quiz.Type)),
		zap.Int("questions", len(quiz.Questions)),
		zap.Duration("elapsed", time.Since(start)))

	result.OK = true
	result.Quiz = quiz
	return result, nil
}

// selectSource tries to attach every file; any registration failure switches
// the whole request to the SOURCE PACK text path. On that path the note is
// NoteNoText whenever no file yielded text, even when the pack still holds
// skip markers. A lone image upload therefore reads "No extractable text
// found" rather than "Some files could not be attached".
func (s *quizGenerationService) selectSource(ctx context.Context, files []domain.UploadedFile) (SourceSelection, []domain.ExtractedSource) {
	handles, err := s.registerAll(ctx, files)
	if err == nil {
		return FilesSource(handles), nil
	}

	logger.Get().Info("file attachment unavailable, falling back to extracted text",
		zap.Int("files", len(files)),
		zap.Bool("unsupported", errors.Is(err, domain.ErrFileAttachmentUnsupported)),
		zap.Error(err))

	pack, extracted := s.extractor.BuildSourcePack(ctx, files)
	selection := TextSource(pack)
	// A pack of skip markers alone carries nothing to quiz on.
	if !lo.SomeBy(extracted, func(src domain.ExtractedSource) bool { return strings.TrimSpace(src.Text) != "" }) {
		selection.Note = NoteNoText
	}
	return selection, extracted
}

func (s *quizGenerationService) registerAll(ctx context.Context, files []domain.UploadedFile) ([]domain.FileHandle, error) {
	handles := make([]domain.FileHandle, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			h, err := s.provider.RegisterFile(gctx, f)
			if err != nil {
				return err
			}
			handles[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.releaseFiles(ctx, handles)
		return nil, err
	}
	return handles, nil
}

// releaseFiles deletes registered files from the provider, best effort.
func (s *quizGenerationService) releaseFiles(ctx context.Context, handles []domain.FileHandle) {
	releaser, ok := s.provider.(domain.FileReleaser)
	if !ok || len(handles) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	for _, h := range handles {
		if h.ID == "" {
			continue
		}
		if err := releaser.ReleaseFile(ctx, h); err != nil {
			logger.Get().Debug("failed to release provider file", zap.String("file_id", h.ID), zap.Error(err))
		}
	}
}
