package dto

import (
	"encoding/json"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/scoring"
)

// GenerateQuizResponse is the result of POST /api/generate-quiz.
// @Description On ok=false the model output failed validation; raw holds it unchanged.
type GenerateQuizResponse struct {
	OK         bool         `json:"ok"`
	Quiz       *domain.Quiz `json:"quiz,omitempty"`
	Raw        string       `json:"raw"`
	Error      string       `json:"error,omitempty"`
	SessionID  string       `json:"sessionId,omitempty"`
	SourceMode string       `json:"sourceMode,omitempty"`
	SourceNote string       `json:"sourceNote,omitempty"`
}

// SessionResponse is a quiz session with its recorded answers.
type SessionResponse struct {
	OK           bool               `json:"ok"`
	SessionID    string             `json:"sessionId"`
	Quiz         *domain.Quiz       `json:"quiz"`
	Answers      domain.AnswerState `json:"answers"`
	Elapsed      string             `json:"elapsed"`
	TimerRunning bool               `json:"timerRunning"`
}

// AnswerRequest sets the answer to one question.
// @Description answer is a choice index (mcq), a string (fill_blank, identification)
// @Description or an object mapping pair indexes to right values (matching).
type AnswerRequest struct {
	Answer json.RawMessage `json:"answer" swaggertype:"object"`
}

// ScoreResponse is the graded attempt of a session.
type ScoreResponse struct {
	OK bool `json:"ok"`
	scoring.Result
	Elapsed string `json:"elapsed"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	OK bool `json:"ok"`
}
