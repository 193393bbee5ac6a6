package render

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/vinayprograms/resumekit/footnote"
	"github.com/vinayprograms/resumekit/projects"
)

// citePattern matches a footnote citation such as [^smith2020].
var citePattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)

// showShare is the cumulative share, in tenths of a percent, after which
// remaining languages are folded into "Other".
const showShare projects.Decimal1 = 950

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Table),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// markdown returns the md template function bound to one pass.
func markdown(md goldmark.Markdown, pass *footnote.Pass) func(string) (string, error) {
	return func(src string) (string, error) {
		var citeErr error
		src = citePattern.ReplaceAllStringFunc(src, func(m string) string {
			key := citePattern.FindStringSubmatch(m)[1]
			n, err := pass.Cite(key)
			if err != nil {
				citeErr = err
				return m
			}
			return fmt.Sprintf(`<sup><a href="#ref-%d">[%d]</a></sup>`, n+1, n+1)
		})
		if citeErr != nil {
			return "", citeErr
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}
}

// languageStats draws a language bar and its legend. Languages are shown
// until their cumulative share passes 95%; the rest below 100% is "Other".
func languageStats(langs []projects.LanguageStat) string {
	var total projects.Decimal1
	shown := langs
	for i, l := range langs {
		if total > showShare {
			shown = langs[:i]
			break
		}
		total += l.Percentage
	}
	other := total < 1000

	var b strings.Builder
	b.WriteString(`<div class="language_bar">`)
	for i, l := range shown {
		fmt.Fprintf(&b, `<span style="width:%s%%;opacity:%s"></span>`, l.Percentage, opacity(i))
	}
	if other {
		fmt.Fprintf(&b, `<span style="width:%s%%;opacity:%s;border-right:0px"></span>`,
			1000-total, opacity(len(shown)))
	}
	b.WriteString(`</div><div class="language_dots">`)
	for i, l := range shown {
		fmt.Fprintf(&b, `<div class="language_dot"><span class="dot" style="opacity:%s"></span><span>%s</span></div>`,
			opacity(i), l.Language)
	}
	if other {
		fmt.Fprintf(&b, `<div class="language_dot"><span class="dot" style="opacity:%s"></span><span>Other</span></div>`,
			opacity(len(shown)))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func opacity(i int) string {
	return strconv.FormatFloat(math.Exp(-0.6*float64(i)), 'f', -1, 64)
}

// emph underlines every occurrence of pattern in s.
func emph(s, pattern string) string {
	if pattern == "" {
		return s
	}
	return strings.ReplaceAll(s, pattern, "<u>"+pattern+"</u>")
}
