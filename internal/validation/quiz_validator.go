package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"quiz-forge/internal/domain"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed quiz_schema.json
var quizSchemaJSON []byte

const quizSchemaURL = "quizforge://quiz.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// QuizSchemaJSON returns the JSON Schema the model output is validated against.
func QuizSchemaJSON() []byte {
	return quizSchemaJSON
}

func quizSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(quizSchemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(quizSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add quiz schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(quizSchemaURL)
	})
	return compiledSchema, compileErr
}

// ParseQuiz turns raw model output into a validated Quiz. Every failure is a
// *domain.OutputShapeError carrying raw unchanged; a single invalid question
// rejects the whole document.
func ParseQuiz(raw string) (*domain.Quiz, error) {
	fail := func(format string, args ...any) error {
		return &domain.OutputShapeError{Message: fmt.Sprintf(format, args...), Raw: raw}
	}

	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return nil, fail("%v", err)
	}

	sch, err := quizSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fail("%v", err)
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &quiz); err != nil {
		return nil, fail("%v", err)
	}

	seen := make(map[string]struct{}, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if _, dup := seen[q.QuestionID()]; dup {
			return nil, fail("questions[%d]: duplicate id %q", i, q.QuestionID())
		}
		seen[q.QuestionID()] = struct{}{}

		if mcq, ok := q.(*domain.MCQ); ok && mcq.AnswerIndex >= len(mcq.Choices) {
			return nil, fail("questions[%d]: answer_index %d out of range for %d choices", i, mcq.AnswerIndex, len(mcq.Choices))
		}
	}

	return &quiz, nil
}
