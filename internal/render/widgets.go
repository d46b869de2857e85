package render

import (
	"net/url"
	"quiz-forge/internal/domain"
	"strconv"
)

// Widget describes the input control of one question.
type Widget interface {
	isWidget()
}

// ChoiceGroup is an exclusive radio group; option values are choice indexes.
type ChoiceGroup struct {
	Name    string
	Options []ChoiceOption
}

type ChoiceOption struct {
	Value   string
	Label   string
	Checked bool
}

// TextField is a single free-text input.
type TextField struct {
	Name        string
	Value       string
	Placeholder string
}

// MatchGrid has one row per left item. Every row offers the right values of
// all pairs.
type MatchGrid struct {
	Rows []MatchRow
}

// MatchRow is keyed by the pair's positional index.
type MatchRow struct {
	Key      string
	Name     string
	Left     string
	Options  []string
	Selected string
}

func (ChoiceGroup) isWidget() {}
func (TextField) isWidget()   {}
func (MatchGrid) isWidget()   {}

// FieldName is the form field carrying the answer to question id.
func FieldName(id string) string {
	return "q-" + id
}

// MatchFieldName is the form field carrying the selection for pair index i.
func MatchFieldName(id string, i int) string {
	return FieldName(id) + "-" + strconv.Itoa(i)
}

// Widgets returns the empty widget for q.
func Widgets(q domain.Question) Widget {
	return WidgetFor(q, nil)
}

// WidgetFor returns the widget for q pre-filled with answer, which may be nil.
func WidgetFor(q domain.Question, answer domain.Answer) Widget {
	switch v := q.(type) {
	case *domain.MCQ:
		selected, ok := answer.(domain.ChoiceAnswer)
		group := ChoiceGroup{Name: FieldName(v.ID)}
		for i, choice := range v.Choices {
			group.Options = append(group.Options, ChoiceOption{
				Value:   strconv.Itoa(i),
				Label:   choice,
				Checked: ok && int(selected) == i,
			})
		}
		return group
	case *domain.FillBlank, *domain.Identification:
		text, _ := answer.(domain.TextAnswer)
		return TextField{Name: FieldName(q.QuestionID()), Value: string(text), Placeholder: "Type your answer"}
	case *domain.Matching:
		selections, _ := answer.(domain.MatchAnswer)
		options := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			options[i] = p.Right
		}
		grid := MatchGrid{}
		for i, p := range v.Pairs {
			key := strconv.Itoa(i)
			grid.Rows = append(grid.Rows, MatchRow{
				Key:      key,
				Name:     MatchFieldName(v.ID, i),
				Left:     p.Left,
				Options:  options,
				Selected: selections[key],
			})
		}
		return grid
	}
	return nil
}

// CollectAnswers reads every question's answer from a submitted quiz form.
// Questions left blank are omitted.
func CollectAnswers(quiz *domain.Quiz, form url.Values) domain.AnswerState {
	answers := domain.AnswerState{}
	for _, q := range quiz.Questions {
		if a, ok := CollectAnswer(q, form); ok {
			answers[q.QuestionID()] = a
		}
	}
	return answers
}

// CollectAnswer reads the answer to q from form. It reports false when the
// question was left blank or the submitted value does not fit the question.
func CollectAnswer(q domain.Question, form url.Values) (domain.Answer, bool) {
	switch v := q.(type) {
	case *domain.MCQ:
		idx, err := strconv.Atoi(form.Get(FieldName(v.ID)))
		if err != nil || idx < 0 || idx >= len(v.Choices) {
			return nil, false
		}
		return domain.ChoiceAnswer(idx), true
	case *domain.FillBlank, *domain.Identification:
		text := form.Get(FieldName(q.QuestionID()))
		if text == "" {
			return nil, false
		}
		return domain.TextAnswer(text), true
	case *domain.Matching:
		selections := domain.MatchAnswer{}
		for i := range v.Pairs {
			if value := form.Get(MatchFieldName(v.ID, i)); value != "" {
				selections[strconv.Itoa(i)] = value
			}
		}
		if len(selections) == 0 {
			return nil, false
		}
		return selections, true
	}
	return nil, false
}
