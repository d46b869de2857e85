package handler

import (
	"context"
	"mime/multipart"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/service"
	"quiz-forge/internal/upload"
	"quiz-forge/internal/validation"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GenerateHandler turns multipart uploads into quiz sessions.
type GenerateHandler struct {
	generator service.QuizGenerationService
	sessions  service.SessionService
	uploads   *upload.Store
	validator *validation.Validator
}

// NewGenerateHandler creates a new GenerateHandler instance
func NewGenerateHandler(generator service.QuizGenerationService, sessions service.SessionService, uploads *upload.Store, validator *validation.Validator) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		sessions:  sessions,
		uploads:   uploads,
		validator: validator,
	}
}

// generation is the outcome of one generate request that reached the model.
type generation struct {
	result  *service.GenerationResult
	session *service.Session
}

// GenerateQuiz godoc
// @Summary Generate a quiz from documents
// @Description Uploads 1-10 documents (max 20MB each) and asks the model for a quiz.
// @Description Output that fails validation is returned with ok=false and the raw model output.
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param quizType formData string true "mcq, fill_blank, identification, matching or mixed"
// @Param questionCount formData int true "5-100"
// @Param difficulty formData string false "Free-form difficulty"
// @Param files formData file true "Documents"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate-quiz [post]
func (h *GenerateHandler) GenerateQuiz(c *fiber.Ctx) error {
	gen, err := h.generate(c)
	if err != nil {
		return err
	}

	resp := dto.GenerateQuizResponse{
		OK:         gen.result.OK,
		Quiz:       gen.result.Quiz,
		Raw:        gen.result.Raw,
		Error:      gen.result.Error,
		SourceMode: string(gen.result.SourceMode),
		SourceNote: gen.result.SourceNote,
	}
	if gen.session != nil {
		resp.SessionID = gen.session.ID
	}
	return c.JSON(resp)
}

// generate validates the form, stores the uploads for the duration of the
// request and runs generation. A session is created only for a valid quiz.
func (h *GenerateHandler) generate(c *fiber.Ctx) (*generation, error) {
	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		headers = form.File["files"]
	}

	input := validation.GenerateInput{
		QuizType:      c.FormValue("quizType"),
		QuestionCount: validation.ParseQuestionCount(c.FormValue("questionCount")),
		Difficulty:    strings.TrimSpace(c.FormValue("difficulty")),
	}
	for _, fh := range headers {
		input.Files = append(input.Files, validation.FileMeta{Name: fh.Filename, Size: fh.Size})
	}
	if err := h.validator.ValidateGenerateInput(input); err != nil {
		return nil, err
	}

	batch, err := h.uploads.NewBatch()
	if err != nil {
		return nil, domain.NewInternalError("Failed to store uploads", err)
	}
	defer batch.Cleanup()

	for _, fh := range headers {
		if _, err := batch.SaveMultipart(fh); err != nil {
			return nil, domain.NewInternalError("Failed to store uploads", err)
		}
	}

	quizType, _ := domain.ParseQuizType(input.QuizType)
	ctx := c.UserContext()
	result, err := h.generator.Generate(ctx, service.GenerateRequest{
		Files:         batch.Files(),
		QuizType:      quizType,
		QuestionCount: input.QuestionCount,
		Difficulty:    input.Difficulty,
	})
	if err != nil {
		logger.Get().Error("Quiz generation failed",
			zap.Error(err),
			zap.String("quiz_type", input.QuizType),
			zap.Int("files", len(headers)))
		return nil, err
	}

	gen := &generation{result: result}
	if result.OK {
		gen.session, err = h.sessions.Create(context.WithoutCancel(ctx), result.Quiz, result.Raw)
		if err != nil {
			return nil, err
		}
	}
	return gen, nil
}
