package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRichText_Prose(t *testing.T) {
	assert.Equal(t, "<p>Hello</p>", RichText("Hello"))
	assert.Equal(t, "", RichText(""))
	assert.Equal(t, "<p>a &lt;b&gt; &amp; c</p>", RichText("a <b> & c"))
}

func TestRichText_Latex(t *testing.T) {
	out := RichText(`Area is \( x^2 \) and \[ \frac{a}{b} \]`)
	assert.Contains(t, out, `<span class="math-inline">\(x^2\)</span>`)
	assert.Contains(t, out, `<span class="math-display">\[\frac{a}{b}\]</span>`)

	escaped := Prose(`\(a < b\)`)
	assert.Equal(t, `<span class="math-inline">\(a &lt; b\)</span>`, escaped)
}

func TestRichText_CodeFence(t *testing.T) {
	text := "Look:\n```go\nfmt.Println(\"\\(x\\)\")\n```\nDone"
	out := RichText(text)

	assert.True(t, strings.HasPrefix(out, "<p>Look:\n</p>"), out)
	assert.Contains(t, out, `<pre class="code-window"><code class="language-go">`)
	assert.Contains(t, out, "Println")
	assert.True(t, strings.HasSuffix(out, "</code></pre><p>\nDone</p>"), out)
	assert.NotContains(t, out, "math-inline")
}

func TestRichText_CodeFenceDefaultsToMarkup(t *testing.T) {
	out := RichText("```\n<div>hi</div>\n```")
	assert.Contains(t, out, `<code class="language-markup">`)
	assert.NotContains(t, out, "<div>hi</div>")
	assert.NotContains(t, out, "<p>")
}

func TestRichText_UnknownLanguageIsEscaped(t *testing.T) {
	out := CodeBlock("<script>", "nosuchlang")
	assert.Contains(t, out, `class="language-nosuchlang"`)
	assert.NotContains(t, out, "<script>")
}

func TestCodeCSS(t *testing.T) {
	assert.NotEmpty(t, CodeCSS())
}
