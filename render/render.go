package render

import (
	"bytes"
	"context"
	"embed"
	"io"
	"text/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/footnote"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/telemetry"
)

//go:embed templates/resume.html
var templates embed.FS

// DefaultTemplate names the built-in template.
const DefaultTemplate = "resume.html"

// Renderer executes a résumé template in two passes.
type Renderer struct {
	tmpl   *template.Template
	md     goldmark.Markdown
	logger *logging.Logger
}

// New creates a Renderer with the built-in template.
func New(logger *logging.Logger) (*Renderer, error) {
	text, err := templates.ReadFile("templates/" + DefaultTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "reading built-in template")
	}
	return NewWithTemplate(DefaultTemplate, string(text), logger)
}

// NewWithTemplate creates a Renderer from template text.
func NewWithTemplate(name, text string, logger *logging.Logger) (*Renderer, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	tmpl, err := template.New(name).Funcs(funcs(nil, nil)).Parse(text)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "parsing template "+name)
	}
	return &Renderer{tmpl: tmpl, md: newMarkdown(), logger: logger.WithComponent("render")}, nil
}

func funcs(md goldmark.Markdown, pass *footnote.Pass) template.FuncMap {
	return template.FuncMap{
		"md":            markdown(md, pass),
		"languageStats": languageStats,
		"emph":          emph,
	}
}

// Render writes the document and returns the footnote table of the body.
// The first pass learns which references are cited; the second renders the
// reference list from that table.
func (r *Renderer) Render(ctx context.Context, in Input, w io.Writer) (footnote.Table, error) {
	table, err := r.pass(ctx, 1, in, nil, io.Discard)
	if err != nil {
		return nil, err
	}

	// The second pass writes to a buffer so a failure emits nothing.
	var buf bytes.Buffer
	if _, err := r.pass(ctx, 2, in, table, &buf); err != nil {
		return nil, err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "writing document")
	}
	return table, nil
}

// pass renders once inside a fresh footnote pass. used selects the
// reference list; nil lists every resolved reference.
func (r *Renderer) pass(ctx context.Context, n int, in Input, used footnote.Table, w io.Writer) (footnote.Table, error) {
	start := time.Now()
	_, span := telemetry.GetTracer().StartRenderSpan(ctx, n)

	view := buildView(in, used)
	table, err := footnote.Run(func(p *footnote.Pass) error {
		tmpl, err := r.tmpl.Clone()
		if err != nil {
			return err
		}
		return tmpl.Funcs(funcs(r.md, p)).Execute(w, view)
	})
	telemetry.GetTracer().EndRenderSpan(span, table.Len(), err)
	if err != nil {
		return nil, errors.Wrapf(err, "render pass %d", n)
	}
	r.logger.PassComplete(n, table.Len(), time.Since(start))
	return table, nil
}
