package handler

import (
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/service"
	"quiz-forge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler exposes quiz sessions as JSON.
type SessionHandler struct {
	sessions  service.SessionService
	validator *validation.Validator
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(sessions service.SessionService, validator *validation.Validator) *SessionHandler {
	return &SessionHandler{sessions: sessions, validator: validator}
}

func (h *SessionHandler) sessionID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := h.validator.ValidateSessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

func sessionResponse(s *service.Session) dto.SessionResponse {
	timer := service.RestoreQuizTimer(s.Timer, nil)
	return dto.SessionResponse{
		OK:           true,
		SessionID:    s.ID,
		Quiz:         s.Quiz,
		Answers:      s.Answers,
		Elapsed:      timer.Display(),
		TimerRunning: timer.Running(),
	}
}

// GetSession godoc
// @Summary Get a quiz session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return err
	}
	session, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(session))
}

// PutAnswer godoc
// @Summary Record the answer to one question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param questionId path string true "Question ID"
// @Param request body dto.AnswerRequest true "Answer"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/answers/{questionId} [put]
func (h *SessionHandler) PutAnswer(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return err
	}
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body must be JSON with an answer field.")
	}
	if len(req.Answer) == 0 {
		return domain.NewInvalidInputError("answer is required")
	}

	ctx := c.UserContext()
	if err := h.sessions.SetAnswer(ctx, id, c.Params("questionId"), req.Answer); err != nil {
		return err
	}
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(session))
}

// ResetSession godoc
// @Summary Clear every answer of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/reset [post]
func (h *SessionHandler) ResetSession(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return err
	}
	session, err := h.sessions.Reset(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(session))
}

// ScoreSession godoc
// @Summary Submit and score a session
// @Description Stops the attempt timer and grades the recorded answers.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ScoreResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/score [post]
func (h *SessionHandler) ScoreSession(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return err
	}
	outcome, err := h.sessions.Score(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.ScoreResponse{
		OK:      true,
		Result:  outcome.Result,
		Elapsed: outcome.ElapsedDisplay,
	})
}
