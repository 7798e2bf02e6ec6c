package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	Langs  = []string{"plaintext", "go", "javascript", "typescript", "json", "yaml", "toml", "python", "bash", "html", "css", "sql", "markdown"}
	Themes = []string{"dark", "light"}
)

// NormalizeLang returns lang if it is a known language, "" otherwise so the
// lexer is guessed from the content.
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !slices.Contains(Langs, lang) {
		return ""
	}
	return lang
}

// NormalizeTheme falls back to "dark".
func NormalizeTheme(theme string) string {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !slices.Contains(Themes, theme) {
		return "dark"
	}
	return theme
}

// CodeHTML highlights code as a block of numbered, anchored lines. Lines in
// hl get the extra "hl" class.
func CodeHTML(code, lang, theme string, hl map[int]bool) (string, error) {
	it, err := lexerFor(lang, code).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}
	style := styleFor(theme)
	formatter := chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.PreventSurroundingPre(true),
		chromahtml.TabWidth(2),
	)

	var out strings.Builder
	out.WriteString(`<div class="codeframe"><div class="codeblock">`)
	for i, tokens := range chroma.SplitTokensIntoLines(it.Tokens()) {
		var line bytes.Buffer
		if err := formatter.Format(&line, style, chroma.Literator(trimNewline(tokens)...)); err != nil {
			return "", fmt.Errorf("format line %d: %w", i+1, err)
		}
		writeLine(&out, i+1, hl[i+1], line.String())
	}
	out.WriteString(`</div></div>`)
	return out.String(), nil
}

func lexerFor(lang, code string) chroma.Lexer {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func styleFor(theme string) *chroma.Style {
	name := "dracula"
	if theme == "light" {
		name = "github"
	}
	if style := styles.Get(name); style != nil {
		return style
	}
	return styles.Fallback
}

// trimNewline drops the line break that ends the last token of a line.
func trimNewline(tokens []chroma.Token) []chroma.Token {
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		last.Value = strings.TrimSuffix(last.Value, "\n")
		tokens = append(tokens[:n-1:n-1], last)
	}
	return tokens
}

func writeLine(out *strings.Builder, n int, highlighted bool, body string) {
	cls := "line"
	if highlighted {
		cls = "line hl"
	}
	fmt.Fprintf(out, `<div id="L%[1]d" class="%[2]s"><a class="ln" href="#L%[1]d">%[1]d</a><span class="code">%[3]s</span></div>`, n, cls, body)
}
