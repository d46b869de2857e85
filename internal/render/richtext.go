package render

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultCodeLanguage = "markup"

var (
	codeFence   = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")
	displayMath = regexp.MustCompile(`\\\[([\s\S]*?)\\\]`)
	inlineMath  = regexp.MustCompile(`\\\(([\s\S]*?)\\\)`)

	codeStyle     = styles.Get("github")
	codeFormatter = chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))

	codeCSSOnce sync.Once
	codeCSS     string
)

// RichText renders model-authored text as HTML. Fenced code blocks become
// highlighted code windows; everything between them becomes paragraphs with
// LaTeX delimiters marked up for client-side math rendering.
func RichText(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range codeFence.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			b.WriteString("<p>" + Prose(text[last:m[0]]) + "</p>")
		}
		lang := defaultCodeLanguage
		if m[2] >= 0 {
			lang = text[m[2]:m[3]]
		}
		b.WriteString(CodeBlock(text[m[4]:m[5]], lang))
		last = m[1]
	}
	if last < len(text) {
		b.WriteString("<p>" + Prose(text[last:]) + "</p>")
	}
	return b.String()
}

// Prose escapes text and wraps \[..\] and \(..\) in math spans. Display math is
// substituted first so its delimiters are never read as inline ones.
func Prose(text string) string {
	escaped := html.EscapeString(text)
	escaped = displayMath.ReplaceAllStringFunc(escaped, func(m string) string {
		latex := strings.TrimSpace(displayMath.FindStringSubmatch(m)[1])
		return `<span class="math-display">\[` + latex + `\]</span>`
	})
	return inlineMath.ReplaceAllStringFunc(escaped, func(m string) string {
		latex := strings.TrimSpace(inlineMath.FindStringSubmatch(m)[1])
		return `<span class="math-inline">\(` + latex + `\)</span>`
	})
}

// CodeBlock renders code inside a code window, highlighted for lang. Unknown
// languages fall back to plain escaped text.
func CodeBlock(code, lang string) string {
	return `<pre class="code-window"><code class="language-` + lang + `">` + highlight(code, lang) + `</code></pre>`
}

func highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Get("html")
	}
	if lexer == nil {
		return html.EscapeString(code)
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}
	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, codeStyle, iterator); err != nil {
		return html.EscapeString(code)
	}
	return buf.String()
}

// CodeCSS returns the stylesheet for highlighted code classes.
func CodeCSS() string {
	codeCSSOnce.Do(func() {
		var buf bytes.Buffer
		if err := codeFormatter.WriteCSS(&buf, codeStyle); err == nil {
			codeCSS = buf.String()
		}
	})
	return codeCSS
}
