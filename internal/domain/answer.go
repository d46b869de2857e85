package domain

import (
	"encoding/json"
	"fmt"
)

// Answer is the sealed union of per-question answer shapes.
type Answer interface {
	isAnswer()
}

// ChoiceAnswer is the selected choice index of an MCQ.
type ChoiceAnswer int

// TextAnswer is the free-text response to a fill-blank or identification question.
type TextAnswer string

// MatchAnswer maps a pair's positional index ("0", "1", ...) to the selected right value.
type MatchAnswer map[string]string

func (ChoiceAnswer) isAnswer() {}
func (TextAnswer) isAnswer()   {}
func (MatchAnswer) isAnswer()  {}

// AnswerState maps question ids to the user's in-progress answers.
type AnswerState map[string]Answer

// Clone returns a shallow copy of s with copied match maps.
func (s AnswerState) Clone() AnswerState {
	out := make(AnswerState, len(s))
	for id, a := range s {
		if m, ok := a.(MatchAnswer); ok {
			cp := make(MatchAnswer, len(m))
			for k, v := range m {
				cp[k] = v
			}
			a = cp
		}
		out[id] = a
	}
	return out
}

// DecodeAnswer decodes a JSON answer value into the shape expected by q.
func DecodeAnswer(q Question, raw json.RawMessage) (Answer, error) {
	switch q.(type) {
	case *MCQ:
		var idx wholeNumber
		if err := json.Unmarshal(raw, &idx); err != nil {
			return nil, fmt.Errorf("answer for %s must be a choice index: %w", q.QuestionID(), err)
		}
		return ChoiceAnswer(idx), nil
	case *FillBlank, *Identification:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("answer for %s must be a string: %w", q.QuestionID(), err)
		}
		return TextAnswer(text), nil
	case *Matching:
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("answer for %s must map pair indexes to values: %w", q.QuestionID(), err)
		}
		return MatchAnswer(m), nil
	}
	return nil, fmt.Errorf("unsupported question type %T", q)
}
