package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// QuizType is the quiz-level type tag requested by the user and echoed by the model.
type QuizType string

const (
	QuizTypeMCQ            QuizType = "mcq"
	QuizTypeFillBlank      QuizType = "fill_blank"
	QuizTypeIdentification QuizType = "identification"
	QuizTypeMatching       QuizType = "matching"
	QuizTypeMixed          QuizType = "mixed"
)

// QuizTypes lists every accepted quiz type tag in display order.
var QuizTypes = []QuizType{
	QuizTypeMCQ,
	QuizTypeFillBlank,
	QuizTypeIdentification,
	QuizTypeMatching,
	QuizTypeMixed,
}

// ParseQuizType returns the QuizType for s, or false when s is not a known tag.
func ParseQuizType(s string) (QuizType, bool) {
	for _, t := range QuizTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// QuestionType discriminates the Question variants on the wire.
type QuestionType string

const (
	QuestionMCQ            QuestionType = "mcq"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionIdentification QuestionType = "identification"
	QuestionMatching       QuestionType = "matching"
)

// Quiz is a validated quiz document. It is never mutated after validation.
type Quiz struct {
	Title                 string     `json:"quiz_title"`
	Type                  QuizType   `json:"quiz_type"`
	DeclaredQuestionCount int        `json:"question_count"`
	SourceSummary         string     `json:"source_summary"`
	Questions             []Question `json:"questions"`
}

// Question is the sealed union of MCQ, FillBlank, Identification and Matching.
type Question interface {
	QuestionID() string
	Type() QuestionType
	isQuestion()
}

// MCQ is a single-answer multiple choice question.
type MCQ struct {
	ID          string
	Prompt      string
	Choices     []string
	AnswerIndex int
	Explanation string
}

// FillBlank accepts any of Answers as a correct free-text response.
type FillBlank struct {
	ID          string
	Prompt      string
	Answers     []string
	Explanation string
}

// Identification accepts any of Answers as a correct free-text response.
type Identification struct {
	ID          string
	Prompt      string
	Answers     []string
	Explanation string
}

// Pair is one left/right association of a Matching question.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Matching asks the user to pair every left item with its right item.
type Matching struct {
	ID          string
	Pairs       []Pair
	Explanation string
}

func (q *MCQ) QuestionID() string            { return q.ID }
func (q *FillBlank) QuestionID() string      { return q.ID }
func (q *Identification) QuestionID() string { return q.ID }
func (q *Matching) QuestionID() string       { return q.ID }

func (*MCQ) Type() QuestionType            { return QuestionMCQ }
func (*FillBlank) Type() QuestionType      { return QuestionFillBlank }
func (*Identification) Type() QuestionType { return QuestionIdentification }
func (*Matching) Type() QuestionType       { return QuestionMatching }

func (*MCQ) isQuestion()            {}
func (*FillBlank) isQuestion()      {}
func (*Identification) isQuestion() {}
func (*Matching) isQuestion()       {}

// AcceptableAnswers returns the accepted answers of a text question, or nil for other variants.
func AcceptableAnswers(q Question) []string {
	switch v := q.(type) {
	case *FillBlank:
		return v.Answers
	case *Identification:
		return v.Answers
	}
	return nil
}

// QuestionPrompt returns the prompt text shown for q.
func QuestionPrompt(q Question) string {
	switch v := q.(type) {
	case *MCQ:
		return v.Prompt
	case *FillBlank:
		return v.Prompt
	case *Identification:
		return v.Prompt
	case *Matching:
		return "Match the items:"
	}
	return ""
}

// QuestionExplanation returns the explanation attached to q.
func QuestionExplanation(q Question) string {
	switch v := q.(type) {
	case *MCQ:
		return v.Explanation
	case *FillBlank:
		return v.Explanation
	case *Identification:
		return v.Explanation
	case *Matching:
		return v.Explanation
	}
	return ""
}

// FindQuestion returns the question with the given id.
func (q *Quiz) FindQuestion(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.QuestionID() == id {
			return question, true
		}
	}
	return nil, false
}

// wholeNumber is an integer field that also accepts integral floats such as 1.0.
type wholeNumber int

func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is not a whole number", data)
	}
	*n = wholeNumber(f)
	return nil
}

type mcqWire struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Choices     []string     `json:"choices"`
	AnswerIndex wholeNumber  `json:"answer_index"`
	Explanation string       `json:"explanation"`
}

type textWire struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Answers     []string     `json:"answers"`
	Explanation string       `json:"explanation"`
}

type matchingWire struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Pairs       []Pair       `json:"pairs"`
	Explanation string       `json:"explanation"`
}

func (q *MCQ) MarshalJSON() ([]byte, error) {
	return json.Marshal(mcqWire{q.ID, QuestionMCQ, q.Prompt, q.Choices, wholeNumber(q.AnswerIndex), q.Explanation})
}

func (q *FillBlank) MarshalJSON() ([]byte, error) {
	return json.Marshal(textWire{q.ID, QuestionFillBlank, q.Prompt, q.Answers, q.Explanation})
}

func (q *Identification) MarshalJSON() ([]byte, error) {
	return json.Marshal(textWire{q.ID, QuestionIdentification, q.Prompt, q.Answers, q.Explanation})
}

func (q *Matching) MarshalJSON() ([]byte, error) {
	return json.Marshal(matchingWire{q.ID, QuestionMatching, q.Pairs, q.Explanation})
}

// UnmarshalQuestion decodes one wire question, dispatching on its "type" tag.
func UnmarshalQuestion(data []byte) (Question, error) {
	var head struct {
		Type QuestionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case QuestionMCQ:
		var w mcqWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return &MCQ{ID: w.ID, Prompt: w.Prompt, Choices: w.Choices, AnswerIndex: int(w.AnswerIndex), Explanation: w.Explanation}, nil
	case QuestionFillBlank, QuestionIdentification:
		var w textWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		if head.Type == QuestionFillBlank {
			return &FillBlank{ID: w.ID, Prompt: w.Prompt, Answers: w.Answers, Explanation: w.Explanation}, nil
		}
		return &Identification{ID: w.ID, Prompt: w.Prompt, Answers: w.Answers, Explanation: w.Explanation}, nil
	case QuestionMatching:
		var w matchingWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return &Matching{ID: w.ID, Pairs: w.Pairs, Explanation: w.Explanation}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", head.Type)
}

// UnmarshalJSON decodes the wire quiz, resolving each question to its variant.
func (q *Quiz) UnmarshalJSON(data []byte) error {
	var w struct {
		Title                 string            `json:"quiz_title"`
		Type                  QuizType          `json:"quiz_type"`
		DeclaredQuestionCount wholeNumber       `json:"question_count"`
		SourceSummary         string            `json:"source_summary"`
		Questions             []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	questions := make([]Question, 0, len(w.Questions))
	for i, raw := range w.Questions {
		question, err := UnmarshalQuestion(raw)
		if err != nil {
			return fmt.Errorf("questions[%d]: %w", i, err)
		}
		questions = append(questions, question)
	}
	*q = Quiz{
		Title:                 w.Title,
		Type:                  w.Type,
		DeclaredQuestionCount: int(w.DeclaredQuestionCount),
		SourceSummary:         w.SourceSummary,
		Questions:             questions,
	}
	return nil
}
