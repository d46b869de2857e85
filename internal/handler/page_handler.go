package handler

import (
	"errors"
	"net/url"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/render"
	"quiz-forge/internal/service"
	"quiz-forge/internal/validation"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the server-rendered quiz pages.
type PageHandler struct {
	generate  *GenerateHandler
	sessions  service.SessionService
	validator *validation.Validator
	upload    render.UploadView
}

// NewPageHandler creates a new PageHandler instance
func NewPageHandler(generate *GenerateHandler, sessions service.SessionService, validator *validation.Validator, upload render.UploadView) *PageHandler {
	return &PageHandler{
		generate:  generate,
		sessions:  sessions,
		validator: validator,
		upload:    upload,
	}
}

func renderPage(c *fiber.Ctx, status int, page templ.Component) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return page.Render(c.UserContext(), c.Response().BodyWriter())
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}

// Index renders the upload form.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, render.UploadPage(h.upload))
}

// Generate handles the upload form. A valid quiz redirects to its session page;
// any failure re-renders the form with the error and the debug panel.
func (h *PageHandler) Generate(c *fiber.Ctx) error {
	gen, err := h.generate.generate(c)
	if err != nil {
		status, message := fiber.StatusInternalServerError, "Unexpected error"
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			message = domainErr.Message
			switch domainErr.Code {
			case domain.ErrInvalidInput:
				status = fiber.StatusBadRequest
			case domain.ErrLLMServiceError:
				message = domainErr.Error()
			}
		}
		return renderPage(c, status, render.ErrorPage(message, "", h.upload))
	}
	if !gen.result.OK {
		return renderPage(c, fiber.StatusOK, render.ErrorPage(gen.result.Error, gen.result.Raw, h.upload))
	}
	return c.Redirect(sessionPath(gen.session.ID), fiber.StatusSeeOther)
}

func (h *PageHandler) loadSession(c *fiber.Ctx) (*service.Session, error) {
	id := c.Params("id")
	if err := h.validator.ValidateSessionID(id); err != nil {
		return nil, err
	}
	return h.sessions.Get(c.UserContext(), id)
}

func quizView(s *service.Session) render.QuizView {
	return render.QuizView{
		SessionID: s.ID,
		Quiz:      s.Quiz,
		Answers:   s.Answers,
		Raw:       s.Raw,
	}
}

// ShowSession renders the quiz form of a session.
func (h *PageHandler) ShowSession(c *fiber.Ctx) error {
	session, err := h.loadSession(c)
	if err != nil {
		return err
	}
	return renderPage(c, fiber.StatusOK, render.QuizPage(quizView(session)))
}

// Submit records the submitted answers and renders the graded quiz. Submitting
// again with other toggles re-renders the same result.
func (h *PageHandler) Submit(c *fiber.Ctx) error {
	session, err := h.loadSession(c)
	if err != nil {
		return err
	}

	form := url.Values{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		form.Add(string(k), string(v))
	})

	ctx := c.UserContext()
	answers := render.CollectAnswers(session.Quiz, form)
	if err := h.sessions.SetAnswers(ctx, session.ID, answers); err != nil {
		return err
	}
	outcome, err := h.sessions.Score(ctx, session.ID)
	if err != nil {
		return err
	}

	view := quizView(session)
	view.Answers = answers
	view.Results = &render.ResultsView{Result: outcome.Result, Elapsed: outcome.ElapsedDisplay}
	view.ShowAnswers = render.ParseToggle(form.Get("showAnswers"))
	view.ShowExplanations = render.ParseToggle(form.Get("showExplanations"))
	return renderPage(c, fiber.StatusOK, render.QuizPage(view))
}

// Reset clears the answers and returns to the empty quiz form.
func (h *PageHandler) Reset(c *fiber.Ctx) error {
	session, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if _, err := h.sessions.Reset(c.UserContext(), session.ID); err != nil {
		return err
	}
	return c.Redirect(sessionPath(session.ID), fiber.StatusSeeOther)
}
