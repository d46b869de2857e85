// Package render produces the server-side HTML of the quiz pages. Components
// are templ components, so handlers stream them straight into the response.
package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/scoring"
	"strconv"

	"github.com/a-h/templ"
)

var quizTypeLabels = map[domain.QuizType]string{
	domain.QuizTypeMCQ:            "Multiple Choice",
	domain.QuizTypeFillBlank:      "Fill in the Blank",
	domain.QuizTypeIdentification: "Identification",
	domain.QuizTypeMatching:       "Matching",
	domain.QuizTypeMixed:          "Mixed",
}

var questionCountPresets = []int{5, 10, 20, 30, 50, 100}

// UploadView feeds the upload page.
type UploadView struct {
	MaxFiles  int
	MaxFileMB int
	Error     string
}

// QuizView is everything the quiz page shows for one session.
type QuizView struct {
	SessionID        string
	Quiz             *domain.Quiz
	Answers          domain.AnswerState
	Raw              string
	SourceNote       string
	Results          *ResultsView
	ShowAnswers      bool
	ShowExplanations bool
}

// ResultsView is a graded attempt.
type ResultsView struct {
	Result  scoring.Result
	Elapsed string
}

type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Page wraps body in the document shell.
func Page(title string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.raw(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css"/>`)
		h.raw(`<style>` + baseCSS + CodeCSS() + `</style>`)
		h.raw(`</head><body><div class="app-shell">`)
		h.raw(`<header><div><h1>QuizForge</h1><div class="subtitle">Turn your documents into a quiz.</div></div>`)
		h.raw(`<span class="badge">No login required</span></header>`)
		h.component(body)
		h.raw(`</div>`)
		h.raw(`<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"></script>`)
		h.raw(`<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/contrib/auto-render.min.js" onload="renderMathInElement(document.body)"></script>`)
		h.raw(`</body></html>`)
	})
}

// UploadPage is the generation form.
func UploadPage(v UploadView) templ.Component {
	return Page("QuizForge", UploadForm(v))
}

func UploadForm(v UploadView) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form method="post" action="/generate" enctype="multipart/form-data">`)

		h.raw(`<section class="section"><h2>Step 1: Upload files</h2><div class="upload-zone">`)
		h.raw(`<input type="file" name="files" multiple required/>`)
		h.rawf(`<p class="file-meta">Max %d files · Max %dMB each</p></div></section>`, v.MaxFiles, v.MaxFileMB)

		h.raw(`<section class="section"><h2>Step 2: Quiz options</h2><div class="grid grid-2"><div>`)
		h.raw(`<label for="quizType">Quiz Type</label><select class="select" id="quizType" name="quizType">`)
		for _, t := range domain.QuizTypes {
			h.rawf(`<option value="%s">`, templ.EscapeString(string(t)))
			h.text(quizTypeLabels[t])
			h.raw(`</option>`)
		}
		h.raw(`</select></div><div>`)
		h.raw(`<label for="difficulty">Difficulty (optional)</label><select class="select" id="difficulty" name="difficulty">`)
		h.raw(`<option value="">Not specified</option><option value="easy">Easy</option>`)
		h.raw(`<option value="medium">Medium</option><option value="hard">Hard</option></select>`)
		h.raw(`</div></div><div class="count-row"><label for="questionCount">Question count</label>`)
		h.raw(`<input class="input" id="questionCount" name="questionCount" type="number" min="5" max="100" value="10" list="count-presets"/>`)
		h.raw(`<datalist id="count-presets">`)
		for _, n := range questionCountPresets {
			h.rawf(`<option value="%d"></option>`, n)
		}
		h.raw(`</datalist></div></section>`)

		h.raw(`<section class="section"><h2>Step 3: Generate quiz</h2>`)
		h.raw(`<button class="button" type="submit">Generate Quiz</button>`)
		if v.Error != "" {
			h.raw(`<div class="error">`)
			h.text(v.Error)
			h.raw(`</div>`)
		}
		h.raw(`</section></form>`)
	})
}

// QuizPage is the quiz of one session with its results and debug output.
func QuizPage(v QuizView) templ.Component {
	return Page(v.Quiz.Title, component(func(h *htmlWriter) {
		h.raw(`<section class="section" id="quiz-section"><h2>Quiz Mode</h2>`)
		h.component(QuizForm(v))
		if v.Results != nil {
			h.component(ResultsPanel(v.Results.Result, v.Results.Elapsed, v.ShowAnswers, v.ShowExplanations))
		}
		h.raw(`</section><section class="section" id="debug-section">`)
		h.component(DebugPanel(v.Raw, ""))
		h.raw(`</section>`)
	}))
}

// QuizForm renders every question of the session. The output depends only on
// v, so rendering twice yields identical markup.
func QuizForm(v QuizView) templ.Component {
	return component(func(h *htmlWriter) {
		base := "/sessions/" + url.PathEscape(v.SessionID)

		h.raw(`<div class="file-meta" id="quiz-meta"><div>`)
		h.text(fmt.Sprintf("%s · %d questions", v.Quiz.Title, v.Quiz.DeclaredQuestionCount))
		h.raw(`</div><div>`)
		h.text(v.Quiz.SourceSummary)
		h.raw(`</div>`)
		if v.SourceNote != "" {
			h.raw(`<div class="source-note">`)
			h.text(v.SourceNote)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)

		h.rawf(`<form method="post" action="%s"><div class="quiz-container" id="quiz-container">`, templ.EscapeString(base+"/submit"))
		for i, q := range v.Quiz.Questions {
			h.component(QuestionCard(i, q, v.Answers[q.QuestionID()]))
		}
		h.raw(`</div>`)

		h.raw(`<div class="button-row">`)
		h.raw(`<button class="button" type="submit">Submit Quiz</button>`)
		h.rawf(`<button class="button secondary" type="submit" formaction="%s">Reset Answers</button>`, templ.EscapeString(base+"/reset"))
		h.raw(`<a class="button secondary" href="/">Back to Setup</a></div>`)

		if v.Results != nil {
			h.raw(`<div class="toggle-row">`)
			h.rawf(`<label><input type="checkbox" name="showAnswers" value="1"%s/> Show Answers</label>`, checked(v.ShowAnswers))
			h.rawf(`<label><input type="checkbox" name="showExplanations" value="1"%s/> Show Explanations</label>`, checked(v.ShowExplanations))
			h.raw(`</div>`)
		}
		h.raw(`</form>`)
	})
}

// QuestionCard renders question number index+1 with its widget.
func QuestionCard(index int, q domain.Question, answer domain.Answer) templ.Component {
	return component(func(h *htmlWriter) {
		h.rawf(`<div class="question-card" data-question-id="%s">`, templ.EscapeString(q.QuestionID()))
		h.rawf(`<div class="question-header"><span class="question-index">%d</span></div>`, index+1)
		h.raw(`<div class="question-body"><div class="question-prompt">`)
		if _, ok := q.(*domain.Matching); ok {
			h.text(domain.QuestionPrompt(q))
		} else {
			h.raw(RichText(domain.QuestionPrompt(q)))
		}
		h.raw(`</div>`)
		h.component(WidgetControl(WidgetFor(q, answer)))
		h.raw(`</div></div>`)
	})
}

// WidgetControl renders the form controls of w.
func WidgetControl(w Widget) templ.Component {
	return component(func(h *htmlWriter) {
		switch v := w.(type) {
		case ChoiceGroup:
			h.raw(`<div class="choice-list">`)
			for _, opt := range v.Options {
				h.rawf(`<label class="choice"><input type="radio" name="%s" value="%s"%s/><span>`,
					templ.EscapeString(v.Name), opt.Value, checked(opt.Checked))
				h.raw(RichText(opt.Label))
				h.raw(`</span></label>`)
			}
			h.raw(`</div>`)
		case TextField:
			h.rawf(`<input class="text-input" type="text" name="%s" value="%s" placeholder="%s"/>`,
				templ.EscapeString(v.Name), templ.EscapeString(v.Value), templ.EscapeString(v.Placeholder))
		case MatchGrid:
			h.raw(`<div class="match-grid">`)
			for _, row := range v.Rows {
				h.raw(`<div class="match-row"><div class="match-left">`)
				h.raw(RichText(row.Left))
				h.rawf(`</div><select class="match-select" name="%s" data-match-index="%s">`,
					templ.EscapeString(row.Name), row.Key)
				h.raw(`<option value="">Select</option>`)
				for _, opt := range row.Options {
					selected := ""
					if opt == row.Selected {
						selected = ` selected`
					}
					h.rawf(`<option value="%s"%s>`, templ.EscapeString(opt), selected)
					h.text(opt)
					h.raw(`</option>`)
				}
				h.raw(`</select></div>`)
			}
			h.raw(`</div>`)
		}
	})
}

// ResultsPanel shows the score, the time taken and a Correct/Incorrect badge
// per question, optionally with answers and explanations.
func ResultsPanel(result scoring.Result, elapsed string, showAnswers, showExplanations bool) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="results" class="results"><h3>Results</h3>`)
		h.rawf(`<div class="result-row"><div><strong>Score</strong></div><div>%d / %d (%d%%)</div></div>`,
			result.TotalScore, result.TotalPossible, result.Percent)
		h.raw(`<div class="result-row"><div><strong>Time taken</strong></div><div>`)
		h.text(elapsed)
		h.raw(`</div></div><div class="result-list">`)
		for i, r := range result.Results {
			badge := `<span class="badge-fail">Incorrect</span>`
			if r.Correct {
				badge = `<span class="badge-success">Correct</span>`
			}
			h.rawf(`<div class="result-row"><div>Question %d</div><div>%s</div></div>`, i+1, badge)
			h.raw(`<div class="file-meta result-detail">`)
			if showAnswers {
				h.raw(`Answer: `)
				h.text(r.CorrectAnswer)
				h.raw(`<br/>`)
			}
			if showExplanations {
				h.raw(`Explanation: `)
				h.text(r.Explanation)
			}
			h.raw(`</div>`)
		}
		h.raw(`</div></div>`)
	})
}

// DebugPanel shows the raw model output and, when set, the generation error.
func DebugPanel(raw, errMsg string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<details class="debug-panel"><summary>Debug Output</summary>`)
		if errMsg != "" {
			h.raw(`<div class="debug-error">`)
			h.text(errMsg)
			h.raw(`</div>`)
		}
		h.raw(`<pre class="debug-raw">`)
		if raw == "" {
			h.raw("No raw output.")
		} else {
			h.text(raw)
		}
		h.raw(`</pre></details>`)
	})
}

// ErrorPage reports a failed generation with the upload form below it.
func ErrorPage(message, raw string, upload UploadView) templ.Component {
	return Page("QuizForge", component(func(h *htmlWriter) {
		h.raw(`<section class="section"><div class="error">`)
		h.text(message)
		h.raw(`</div></section>`)
		h.component(UploadForm(upload))
		h.raw(`<section class="section" id="debug-section">`)
		h.component(DebugPanel(raw, message))
		h.raw(`</section>`)
	}))
}

func checked(on bool) string {
	if on {
		return ` checked`
	}
	return ""
}

// ParseToggle reads a checkbox form value.
func ParseToggle(v string) bool {
	if v == "on" {
		return true
	}
	on, err := strconv.ParseBool(v)
	return err == nil && on
}
