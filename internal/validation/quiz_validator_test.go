package validation

import (
	"encoding/json"
	"errors"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/prompt"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyQuiz = `{"quiz_title":"T","quiz_type":"mcq","question_count":0,"source_summary":"none","questions":[]}`

const mixedQuiz = `{
  "quiz_title": "Geography",
  "quiz_type": "mixed",
  "question_count": 4,
  "source_summary": "Capitals and rivers.",
  "model_notes": "extra keys are ignored",
  "questions": [
    {"id":"q1","type":"mcq","prompt":"Capital of France?","choices":["Paris","Rome","Berlin"],"answer_index":0,"explanation":"Paris."},
    {"id":"q2","type":"fill_blank","prompt":"The ___ flows through Cairo.","answers":["Nile"],"explanation":"Nile."},
    {"id":"q3","type":"identification","prompt":"Largest ocean?","answers":["Pacific","Pacific Ocean"],"explanation":"Pacific."},
    {"id":"q4","type":"matching","pairs":[{"left":"Japan","right":"Tokyo"},{"left":"Peru","right":"Lima"}],"explanation":"Capitals."}
  ]
}`

func requireShapeError(t *testing.T, err error, raw string) *domain.OutputShapeError {
	t.Helper()
	var shapeErr *domain.OutputShapeError
	require.True(t, errors.As(err, &shapeErr), "expected OutputShapeError, got %v", err)
	assert.Equal(t, raw, shapeErr.Raw)
	return shapeErr
}

func TestParseQuiz_NotJSON(t *testing.T) {
	quiz, err := ParseQuiz("{not json")
	assert.Nil(t, quiz)
	shapeErr := requireShapeError(t, err, "{not json")
	assert.Contains(t, shapeErr.Error(), "invalid JSON output")
	assert.Contains(t, shapeErr.UserMessage(), "Invalid JSON output: ")
}

func TestParseQuiz_EmptyQuestionsIsValid(t *testing.T) {
	quiz, err := ParseQuiz(emptyQuiz)
	require.NoError(t, err)
	assert.Equal(t, "T", quiz.Title)
	assert.Equal(t, domain.QuizTypeMCQ, quiz.Type)
	assert.Equal(t, 0, quiz.DeclaredQuestionCount)
	assert.NotNil(t, quiz.Questions)
	assert.Empty(t, quiz.Questions)
}

func TestParseQuiz_AllVariants(t *testing.T) {
	quiz, err := ParseQuiz("\n  " + mixedQuiz + "\n")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 4)

	mcq, ok := quiz.Questions[0].(*domain.MCQ)
	require.True(t, ok)
	assert.Equal(t, 0, mcq.AnswerIndex)
	assert.Len(t, mcq.Choices, 3)

	_, ok = quiz.Questions[1].(*domain.FillBlank)
	assert.True(t, ok)
	ident, ok := quiz.Questions[2].(*domain.Identification)
	require.True(t, ok)
	assert.Equal(t, []string{"Pacific", "Pacific Ocean"}, ident.Answers)

	matching, ok := quiz.Questions[3].(*domain.Matching)
	require.True(t, ok)
	assert.Equal(t, domain.Pair{Left: "Peru", Right: "Lima"}, matching.Pairs[1])
}

func TestParseQuiz_DeclaredCountMayDiffer(t *testing.T) {
	raw := `{"quiz_title":"T","quiz_type":"mcq","question_count":20,"source_summary":"Reduced.","questions":[
	  {"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":1,"explanation":"e"}]}`
	quiz, err := ParseQuiz(raw)
	require.NoError(t, err)
	assert.Equal(t, 20, quiz.DeclaredQuestionCount)
	assert.Len(t, quiz.Questions, 1)
}

func TestParseQuiz_IntegralFloats(t *testing.T) {
	raw := `{"quiz_title":"T","quiz_type":"mcq","question_count":5.0,"source_summary":"s","questions":[
	  {"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":1.0,"explanation":"e"}]}`
	quiz, err := ParseQuiz(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, quiz.DeclaredQuestionCount)
	mcq, ok := quiz.Questions[0].(*domain.MCQ)
	require.True(t, ok)
	assert.Equal(t, 1, mcq.AnswerIndex)
}

func TestParseQuiz_Rejections(t *testing.T) {
	tests := map[string]string{
		"missing title":           `{"quiz_type":"mcq","question_count":0,"source_summary":"","questions":[]}`,
		"unknown quiz type":       `{"quiz_title":"T","quiz_type":"essay","question_count":0,"source_summary":"","questions":[]}`,
		"negative count":          `{"quiz_title":"T","quiz_type":"mcq","question_count":-1,"source_summary":"","questions":[]}`,
		"fractional count":        `{"quiz_title":"T","quiz_type":"mcq","question_count":2.5,"source_summary":"","questions":[]}`,
		"unknown question type":   `{"quiz_title":"T","quiz_type":"mixed","question_count":1,"source_summary":"","questions":[{"id":"a","type":"essay","prompt":"p","explanation":"e"}]}`,
		"one choice":              `{"quiz_title":"T","quiz_type":"mcq","question_count":1,"source_summary":"","questions":[{"id":"a","type":"mcq","prompt":"p","choices":["x"],"answer_index":0,"explanation":"e"}]}`,
		"fractional answer index": `{"quiz_title":"T","quiz_type":"mcq","question_count":1,"source_summary":"","questions":[{"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":0.5,"explanation":"e"}]}`,
		"answer index too big":    `{"quiz_title":"T","quiz_type":"mcq","question_count":1,"source_summary":"","questions":[{"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":2,"explanation":"e"}]}`,
		"no answers":              `{"quiz_title":"T","quiz_type":"fill_blank","question_count":1,"source_summary":"","questions":[{"id":"a","type":"fill_blank","prompt":"p","answers":[],"explanation":"e"}]}`,
		"one pair":                `{"quiz_title":"T","quiz_type":"matching","question_count":1,"source_summary":"","questions":[{"id":"a","type":"matching","pairs":[{"left":"l","right":"r"}],"explanation":"e"}]}`,
		"pair missing right":      `{"quiz_title":"T","quiz_type":"matching","question_count":1,"source_summary":"","questions":[{"id":"a","type":"matching","pairs":[{"left":"l"},{"left":"m","right":"n"}],"explanation":"e"}]}`,
		"duplicate ids": `{"quiz_title":"T","quiz_type":"mcq","question_count":2,"source_summary":"","questions":[
			{"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":0,"explanation":"e"},
			{"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":1,"explanation":"e"}]}`,
		"one bad question rejects all": `{"quiz_title":"T","quiz_type":"mixed","question_count":2,"source_summary":"","questions":[
			{"id":"a","type":"mcq","prompt":"p","choices":["x","y"],"answer_index":0,"explanation":"e"},
			{"id":"b","type":"identification","prompt":"p","explanation":"e"}]}`,
		"markdown fenced": "```json\n" + emptyQuiz + "\n```",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			quiz, err := ParseQuiz(raw)
			assert.Nil(t, quiz)
			requireShapeError(t, err, raw)
		})
	}
}

var shapeKeyRe = regexp.MustCompile(`"([a-z_]+)":`)

func schemaPropertyNames(node any, into map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		if props, ok := v["properties"].(map[string]any); ok {
			for name := range props {
				into[name] = struct{}{}
			}
		}
		for _, child := range v {
			schemaPropertyNames(child, into)
		}
	case []any:
		for _, child := range v {
			schemaPropertyNames(child, into)
		}
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestQuizSchema_MatchesPromptShape(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal(QuizSchemaJSON(), &doc))
	fromSchema := map[string]struct{}{}
	schemaPropertyNames(doc, fromSchema)

	fromPrompt := map[string]struct{}{}
	for _, m := range shapeKeyRe.FindAllStringSubmatch(prompt.SchemaShape, -1) {
		fromPrompt[m[1]] = struct{}{}
	}

	assert.Equal(t, sortedKeys(fromSchema), sortedKeys(fromPrompt))
}
