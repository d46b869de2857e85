package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"quiz-forge/internal/adapter"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/handler"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/render"
	"quiz-forge/internal/scoring"
	"quiz-forge/internal/service"
	"quiz-forge/internal/upload"
	"quiz-forge/internal/validation"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

// MockQuizGenerationService
type MockQuizGenerationService struct {
	GenerateFunc func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error)
}

func (m *MockQuizGenerationService) Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	panic("MockQuizGenerationService.GenerateFunc not implemented")
}

// MockSessionService
type MockSessionService struct {
	CreateFunc     func(ctx context.Context, quiz *domain.Quiz, raw string) (*service.Session, error)
	GetFunc        func(ctx context.Context, id string) (*service.Session, error)
	SetAnswerFunc  func(ctx context.Context, id, questionID string, raw json.RawMessage) error
	SetAnswersFunc func(ctx context.Context, id string, answers domain.AnswerState) error
	ResetFunc      func(ctx context.Context, id string) (*service.Session, error)
	ScoreFunc      func(ctx context.Context, id string) (*service.ScoreOutcome, error)
}

func (m *MockSessionService) Create(ctx context.Context, quiz *domain.Quiz, raw string) (*service.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, quiz, raw)
	}
	panic("MockSessionService.CreateFunc not implemented")
}
func (m *MockSessionService) Get(ctx context.Context, id string) (*service.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	panic("MockSessionService.GetFunc not implemented")
}
func (m *MockSessionService) SetAnswer(ctx context.Context, id, questionID string, raw json.RawMessage) error {
	if m.SetAnswerFunc != nil {
		return m.SetAnswerFunc(ctx, id, questionID, raw)
	}
	panic("MockSessionService.SetAnswerFunc not implemented")
}
func (m *MockSessionService) SetAnswers(ctx context.Context, id string, answers domain.AnswerState) error {
	if m.SetAnswersFunc != nil {
		return m.SetAnswersFunc(ctx, id, answers)
	}
	panic("MockSessionService.SetAnswersFunc not implemented")
}
func (m *MockSessionService) Reset(ctx context.Context, id string) (*service.Session, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, id)
	}
	panic("MockSessionService.ResetFunc not implemented")
}
func (m *MockSessionService) Score(ctx context.Context, id string) (*service.ScoreOutcome, error) {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, id)
	}
	panic("MockSessionService.ScoreFunc not implemented")
}

// --- Fixtures ---

const testSessionID = "01HV6Y4ZQ3T2S7C9K8M1N0P5RW"

func testQuiz() *domain.Quiz {
	return &domain.Quiz{
		Title:                 "Capitals",
		Type:                  domain.QuizTypeMCQ,
		DeclaredQuestionCount: 1,
		SourceSummary:         "Europe.",
		Questions: []domain.Question{
			&domain.MCQ{ID: "q1", Prompt: "Capital of France?", Choices: []string{"Rome", "Paris"}, AnswerIndex: 1, Explanation: "Paris."},
		},
	}
}

type testFile struct {
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

type testServer struct {
	app       *fiber.App
	generator *MockQuizGenerationService
	sessions  *MockSessionService
}

func newTestServer(t *testing.T, uploadCfg config.UploadConfig) *testServer {
	t.Helper()
	store, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)

	generator := &MockQuizGenerationService{}
	sessions := &MockSessionService{}
	validator := validation.NewValidator(uploadCfg)

	generateHandler := handler.NewGenerateHandler(generator, sessions, store, validator)
	sessionHandler := handler.NewSessionHandler(sessions, validator)
	pageHandler := handler.NewPageHandler(generateHandler, sessions, validator, render.UploadView{MaxFiles: 10, MaxFileMB: 20})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	api := app.Group("/api")
	api.Post("/generate-quiz", generateHandler.GenerateQuiz)
	api.Get("/sessions/:id", sessionHandler.GetSession)
	api.Put("/sessions/:id/answers/:questionId", sessionHandler.PutAnswer)
	api.Post("/sessions/:id/reset", sessionHandler.ResetSession)
	api.Post("/sessions/:id/score", sessionHandler.ScoreSession)
	app.Get("/", pageHandler.Index)
	app.Post("/generate", pageHandler.Generate)
	app.Get("/sessions/:id", pageHandler.ShowSession)
	app.Post("/sessions/:id/submit", pageHandler.Submit)
	app.Post("/sessions/:id/reset", pageHandler.Reset)

	return &testServer{app: app, generator: generator, sessions: sessions}
}

func validFields() map[string]string {
	return map[string]string{"quizType": "mcq", "questionCount": "5", "difficulty": "  easy  "}
}

func postGenerate(t *testing.T, s *testServer, path string, fields map[string]string, files []testFile) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

// --- Generate ---

func TestGenerateQuiz_Success(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})

	var seen []domain.UploadedFile
	s.generator.GenerateFunc = func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
		assert.Equal(t, domain.QuizTypeMCQ, req.QuizType)
		assert.Equal(t, 5, req.QuestionCount)
		assert.Equal(t, "easy", req.Difficulty)
		for _, f := range req.Files {
			data, err := os.ReadFile(f.Path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		}
		seen = req.Files
		return &service.GenerationResult{OK: true, Quiz: testQuiz(), Raw: `{"raw":true}`, SourceMode: domain.SourceModeFiles}, nil
	}
	s.sessions.CreateFunc = func(ctx context.Context, quiz *domain.Quiz, raw string) (*service.Session, error) {
		assert.Equal(t, `{"raw":true}`, raw)
		return &service.Session{ID: testSessionID, Quiz: quiz}, nil
	}

	resp := postGenerate(t, s, "/api/generate-quiz", validFields(), []testFile{
		{name: "notes.txt", content: "Paris is the capital of France."},
		{name: "more.md", content: "# Rome"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp.Body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, testSessionID, body["sessionId"])
	assert.Equal(t, `{"raw":true}`, body["raw"])
	assert.Equal(t, "files", body["sourceMode"])
	quiz := body["quiz"].(map[string]any)
	assert.Equal(t, "Capitals", quiz["quiz_title"])
	questions := quiz["questions"].([]any)
	assert.Equal(t, "mcq", questions[0].(map[string]any)["type"])

	require.Len(t, seen, 2)
	assert.Equal(t, "notes.txt", seen[0].OriginalName)
	for _, f := range seen {
		_, err := os.Stat(f.Path)
		assert.True(t, os.IsNotExist(err), "upload %s should be removed", f.Path)
	}
}

func TestGenerateQuiz_InputValidation(t *testing.T) {
	oneFile := []testFile{{name: "a.txt", content: "text"}}
	tooMany := make([]testFile, 11)
	for i := range tooMany {
		tooMany[i] = testFile{name: fmt.Sprintf("f%d.txt", i), content: "x"}
	}

	tests := []struct {
		name   string
		fields map[string]string
		files  []testFile
		want   string
	}{
		{"BadQuizType", map[string]string{"quizType": "essay", "questionCount": "5"}, oneFile, "Invalid quiz type."},
		{"CountTooLow", map[string]string{"quizType": "mcq", "questionCount": "4"}, oneFile, "Question count must be 5-100."},
		{"CountTooHigh", map[string]string{"quizType": "mcq", "questionCount": "101"}, oneFile, "Question count must be 5-100."},
		{"CountNotNumber", map[string]string{"quizType": "mcq", "questionCount": "ten"}, oneFile, "Question count must be 5-100."},
		{"NoFiles", validFields(), nil, "At least one file is required."},
		{"TooManyFiles", validFields(), tooMany, "Max 10 files allowed."},
		{"Oversized", validFields(), []testFile{{name: "big.txt", content: strings.Repeat("x", 1024*1024+1)}}, "big.txt exceeds 1MB limit."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, config.UploadConfig{MaxFiles: 10, MaxFileBytes: 1024 * 1024})
			resp := postGenerate(t, s, "/api/generate-quiz", tt.fields, tt.files)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			body := decode[middleware.ErrorResponse](t, resp.Body)
			assert.False(t, body.OK)
			assert.Equal(t, tt.want, body.Error)
		})
	}
}

func TestGenerateQuiz_InvalidModelOutput(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.generator.GenerateFunc = func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
		return &service.GenerationResult{OK: false, Raw: "{not json", Error: "Invalid JSON output: unexpected end"}, nil
	}

	resp := postGenerate(t, s, "/api/generate-quiz", validFields(), []testFile{{name: "a.txt", content: "x"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[dto.GenerateQuizResponse](t, resp.Body)
	assert.False(t, body.OK)
	assert.Equal(t, "{not json", body.Raw)
	assert.Equal(t, "Invalid JSON output: unexpected end", body.Error)
	assert.Empty(t, body.SessionID)
	assert.Nil(t, body.Quiz)
}

func TestGenerateQuiz_ModelFailure(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.generator.GenerateFunc = func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
		return nil, domain.NewLLMServiceError(errors.New("rate limited"))
	}

	resp := postGenerate(t, s, "/api/generate-quiz", validFields(), []testFile{{name: "a.txt", content: "x"}})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode[middleware.ErrorResponse](t, resp.Body)
	assert.Contains(t, body.Error, "rate limited")
}

// --- Sessions API ---

func TestSessionAPI_NotFound(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.sessions.GetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		return nil, domain.NewSessionNotFoundError(id)
	}

	for _, id := range []string{"not-a-session", testSessionID} {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, id)
	}
}

func TestSessionAPI_PutAnswer(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	answers := domain.AnswerState{}
	s.sessions.SetAnswerFunc = func(ctx context.Context, id, questionID string, raw json.RawMessage) error {
		assert.Equal(t, testSessionID, id)
		assert.Equal(t, "q1", questionID)
		assert.JSONEq(t, `1`, string(raw))
		answers[questionID] = domain.ChoiceAnswer(1)
		return nil
	}
	s.sessions.GetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		return &service.Session{ID: id, Quiz: testQuiz(), Answers: answers}, nil
	}

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+testSessionID+"/answers/q1", strings.NewReader(`{"answer":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp.Body)
	assert.Equal(t, map[string]any{"q1": float64(1)}, body["answers"])
	assert.Equal(t, "0:00", body["elapsed"])
}

func TestSessionAPI_PutAnswerRequiresAnswer(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+testSessionID+"/answers/q1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionAPI_Score(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.sessions.ScoreFunc = func(ctx context.Context, id string) (*service.ScoreOutcome, error) {
		return &service.ScoreOutcome{
			Result:         scoring.ScoreQuiz(testQuiz(), domain.AnswerState{"q1": domain.ChoiceAnswer(1)}),
			ElapsedDisplay: "3:07",
		}, nil
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/sessions/"+testSessionID+"/score", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp.Body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(1), body["totalScore"])
	assert.Equal(t, float64(100), body["percent"])
	assert.Equal(t, "3:07", body["elapsed"])
	results := body["results"].([]any)
	assert.Equal(t, "Paris", results[0].(map[string]any)["correctAnswer"])
}

func TestSessionAPI_Reset(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.sessions.ResetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		return &service.Session{ID: id, Quiz: testQuiz(), Answers: domain.AnswerState{}}, nil
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/sessions/"+testSessionID+"/reset", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[dto.SessionResponse](t, resp.Body)
	assert.Empty(t, body.Answers)
}

// --- Pages ---

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPages_Index(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readBody(t, resp), `action="/generate"`)
}

func TestPages_GenerateRedirectsToSession(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.generator.GenerateFunc = func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
		return &service.GenerationResult{OK: true, Quiz: testQuiz(), Raw: "{}"}, nil
	}
	s.sessions.CreateFunc = func(ctx context.Context, quiz *domain.Quiz, raw string) (*service.Session, error) {
		return &service.Session{ID: testSessionID, Quiz: quiz}, nil
	}

	resp := postGenerate(t, s, "/generate", validFields(), []testFile{{name: "a.txt", content: "x"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sessions/"+testSessionID, resp.Header.Get("Location"))
}

func TestPages_GenerateShowsErrors(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})

	resp := postGenerate(t, s, "/generate", map[string]string{"quizType": "mcq", "questionCount": "2"}, []testFile{{name: "a.txt", content: "x"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `<div class="error">Question count must be 5-100.</div>`)

	s.generator.GenerateFunc = func(ctx context.Context, req service.GenerateRequest) (*service.GenerationResult, error) {
		return &service.GenerationResult{Raw: "<oops>", Error: "Invalid JSON output: bad"}, nil
	}
	resp = postGenerate(t, s, "/generate", validFields(), []testFile{{name: "a.txt", content: "x"}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := readBody(t, resp)
	assert.Contains(t, page, `<div class="debug-error">Invalid JSON output: bad</div>`)
	assert.Contains(t, page, `<pre class="debug-raw">&lt;oops&gt;</pre>`)
}

func TestPages_SubmitScoresAndRenders(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.sessions.GetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		return &service.Session{ID: id, Quiz: testQuiz(), Answers: domain.AnswerState{}, Raw: "{}"}, nil
	}
	var stored domain.AnswerState
	s.sessions.SetAnswersFunc = func(ctx context.Context, id string, answers domain.AnswerState) error {
		stored = answers
		return nil
	}
	s.sessions.ScoreFunc = func(ctx context.Context, id string) (*service.ScoreOutcome, error) {
		return &service.ScoreOutcome{Result: scoring.ScoreQuiz(testQuiz(), stored), ElapsedDisplay: "0:45"}, nil
	}

	form := url.Values{"q-q1": {"1"}, "showAnswers": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+testSessionID+"/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, domain.AnswerState{"q1": domain.ChoiceAnswer(1)}, stored)
	page := readBody(t, resp)
	assert.Contains(t, page, "1 / 1 (100%)")
	assert.Contains(t, page, "0:45")
	assert.Contains(t, page, "Answer: Paris")
	assert.NotContains(t, page, "Explanation: Paris.")
	assert.Contains(t, page, `name="q-q1" value="1" checked`)
}

func TestPages_ResetRedirects(t *testing.T) {
	s := newTestServer(t, config.UploadConfig{})
	s.sessions.GetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		return &service.Session{ID: id, Quiz: testQuiz()}, nil
	}
	reset := false
	s.sessions.ResetFunc = func(ctx context.Context, id string) (*service.Session, error) {
		reset = true
		return &service.Session{ID: id, Quiz: testQuiz()}, nil
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/sessions/"+testSessionID+"/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, reset)
}

// --- Health ---

type downCache struct {
	domain.Cache
}

func (downCache) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/up", handler.NewHealthHandler(adapter.NewMemoryCacheAdapter()).Health)
	app.Get("/down", handler.NewHealthHandler(downCache{}).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/up", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.HealthResponse](t, resp.Body).OK)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/down", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, decode[dto.HealthResponse](t, resp.Body).OK)
}
