// Package scoring grades an AnswerState against a validated Quiz.
package scoring

import (
	"math"
	"quiz-forge/internal/domain"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// QuestionResult is the grade of a single question.
type QuestionResult struct {
	ID            string `json:"id"`
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Result is the grade of a whole quiz. Results follow question order.
type Result struct {
	Results       []QuestionResult `json:"results"`
	TotalScore    int              `json:"totalScore"`
	TotalPossible int              `json:"totalPossible"`
	Percent       int              `json:"percent"`
}

// Normalize trims, collapses whitespace runs to a single space and lowercases.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ScoreQuiz grades answers against quiz. It never mutates its inputs, and a
// missing or wrongly shaped answer scores zero.
func ScoreQuiz(quiz *domain.Quiz, answers domain.AnswerState) Result {
	results := lo.Map(quiz.Questions, func(q domain.Question, _ int) QuestionResult {
		return ScoreQuestion(q, answers[q.QuestionID()])
	})

	totalScore := lo.SumBy(results, func(r QuestionResult) int { return r.Score })
	totalPossible := lo.SumBy(results, func(r QuestionResult) int { return r.Total })

	percent := 0
	if totalPossible > 0 {
		percent = int(math.Round(float64(totalScore) / float64(totalPossible) * 100))
	}

	return Result{
		Results:       results,
		TotalScore:    totalScore,
		TotalPossible: totalPossible,
		Percent:       percent,
	}
}

// ScoreQuestion grades one question. answer may be nil.
func ScoreQuestion(q domain.Question, answer domain.Answer) QuestionResult {
	switch v := q.(type) {
	case *domain.MCQ:
		return scoreMCQ(v, answer)
	case *domain.FillBlank:
		return scoreText(v.ID, v.Answers, v.Explanation, answer)
	case *domain.Identification:
		return scoreText(v.ID, v.Answers, v.Explanation, answer)
	case *domain.Matching:
		return scoreMatching(v, answer)
	}
	return QuestionResult{ID: q.QuestionID(), Total: 1}
}

func binary(id string, correct bool, correctAnswer, explanation string) QuestionResult {
	return QuestionResult{
		ID:            id,
		Correct:       correct,
		Score:         lo.Ternary(correct, 1, 0),
		Total:         1,
		CorrectAnswer: correctAnswer,
		Explanation:   explanation,
	}
}

func scoreMCQ(q *domain.MCQ, answer domain.Answer) QuestionResult {
	choice, ok := answer.(domain.ChoiceAnswer)
	correctAnswer := ""
	if q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices) {
		correctAnswer = q.Choices[q.AnswerIndex]
	}
	return binary(q.ID, ok && int(choice) == q.AnswerIndex, correctAnswer, q.Explanation)
}

func scoreText(id string, accepted []string, explanation string, answer domain.Answer) QuestionResult {
	text, _ := answer.(domain.TextAnswer)
	given := Normalize(string(text))
	correct := lo.ContainsBy(accepted, func(a string) bool { return Normalize(a) == given })
	return binary(id, correct, strings.Join(accepted, " / "), explanation)
}

func scoreMatching(q *domain.Matching, answer domain.Answer) QuestionResult {
	selections, _ := answer.(domain.MatchAnswer)

	score := 0
	for i, pair := range q.Pairs {
		if Normalize(selections[strconv.Itoa(i)]) == Normalize(pair.Right) {
			score++
		}
	}

	correctAnswer := strings.Join(lo.Map(q.Pairs, func(p domain.Pair, _ int) string {
		return p.Left + " → " + p.Right
	}), "; ")

	return QuestionResult{
		ID:            q.ID,
		Correct:       score == len(q.Pairs),
		Score:         score,
		Total:         len(q.Pairs),
		CorrectAnswer: correctAnswer,
		Explanation:   q.Explanation,
	}
}
