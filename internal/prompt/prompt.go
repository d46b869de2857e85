// Package prompt builds the system and user prompts sent to the model. Both
// builders are pure: identical inputs always yield byte-identical text.
package prompt

import (
	"fmt"
	"quiz-forge/internal/domain"
	"strings"
)

// Params are the user-controlled inputs of one generation request.
type Params struct {
	QuizType      domain.QuizType
	QuestionCount int
	Difficulty    string
	SourceMode    domain.SourceMode
	SourceNote    string
}

const systemPrompt = `You are a quiz generator. You must output valid JSON only. No markdown. Do not invent facts. Use ONLY the attached files or provided SOURCE PACK. If information is insufficient, reduce the number of questions and state that in source_summary. Render math using LaTeX delimiters: inline \\( ... \\) and block \\[ ... \\]. Keep questions exam-ready and unambiguous. Provide short explanations.`

// SchemaShape is the literal JSON shape shown to the model. It must stay in
// lockstep with the validator's JSON Schema.
const SchemaShape = `{
  "quiz_title": string,
  "quiz_type": "mcq"|"fill_blank"|"identification"|"matching"|"mixed",
  "question_count": number,
  "source_summary": string,
  "questions": [
    {
      "id": string,
      "type": "mcq",
      "prompt": string,
      "choices": string[],
      "answer_index": number,
      "explanation": string
    },
    {
      "id": string,
      "type": "fill_blank",
      "prompt": string,
      "answers": string[],
      "explanation": string
    },
    {
      "id": string,
      "type": "identification",
      "prompt": string,
      "answers": string[],
      "explanation": string
    },
    {
      "id": string,
      "type": "matching",
      "pairs": [
        { "left": string, "right": string }
      ],
      "explanation": string
    }
  ]
}`

const rules = `Rules:
1) Use ONLY information found in the provided files or SOURCE PACK.
2) If sources are insufficient, reduce question_count accordingly and explain in source_summary.
3) No hallucinations. Omit any uncertain question.
4) Output MUST be valid JSON only.
5) All math must use LaTeX delimiters (\( \) and \[ \]).
6) Keep questions exam-ready and unambiguous; avoid trick wording.
7) Ensure MCQ distractors are plausible.
8) Matching pairs should be 4-10 pairs depending on questionCount; do not repeat.
9) Keep explanations short and grounded.
10) Never include copyrighted exam answer keys verbatim; paraphrase into practice questions.`

// SystemPrompt returns the fixed system instructions.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt renders the per-request instructions.
func UserPrompt(p Params) string {
	difficulty := "Difficulty: not specified"
	if d := strings.TrimSpace(p.Difficulty); d != "" {
		difficulty = "Difficulty: " + d
	}
	note := ""
	if p.SourceNote != "" {
		note = "Source note: " + p.SourceNote
	}

	var b strings.Builder
	b.WriteString("Generate a quiz with the following requirements.\n\n")
	fmt.Fprintf(&b, "Quiz type: %s\n", p.QuizType)
	fmt.Fprintf(&b, "Requested question count: %d\n", p.QuestionCount)
	b.WriteString(difficulty + "\n")
	fmt.Fprintf(&b, "Source mode: %s\n", p.SourceMode)
	b.WriteString(note + "\n\n")
	b.WriteString("Strict JSON schema (no markdown, no extra keys):\n")
	b.WriteString(SchemaShape + "\n\n")
	b.WriteString(rules + "\n\n")
	b.WriteString("Return JSON only and ensure it parses.")
	return b.String()
}
