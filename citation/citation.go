package citation

import (
	"context"
	"io"
	"strings"
)

// Kind names a citation variant.
type Kind string

// Citation variants.
const (
	KindPlainText         Kind = "plain_text"
	KindPlainTextWithYear Kind = "plain_text_with_year"
	KindURL               Kind = "url"
	KindDOI               Kind = "doi"
	KindBibtex            Kind = "bibtex"
)

// Fetcher is the transport used during resolution.
type Fetcher interface {
	// Open returns the body of a web page.
	Open(ctx context.Context, url string) (io.ReadCloser, error)

	// FetchCSL returns the CSL-JSON record for a DOI.
	FetchCSL(ctx context.Context, doi string) ([]byte, error)
}

// Citation is an unresolved bibliographic reference.
type Citation interface {
	Kind() Kind

	// Resolve fetches or parses the source. It must be called at most once
	// per citation.
	Resolve(ctx context.Context, f Fetcher) (Resolved, error)

	// Source identifies the citation in logs and spans.
	Source() string

	isCitation()
}

// Resolved is a citation whose source data is available.
type Resolved interface {
	// Format builds the display text. An error means the citation has
	// nothing to display and should be dropped.
	Format() (string, error)

	// Year returns the publication year when known.
	Year() (int, bool)
}

// warner is implemented by resolved values that carry non-fatal
// diagnostics from resolution.
type warner interface {
	Warnings() []string
}

// PlainText is literal display text. It is its own resolved form.
type PlainText string

func (PlainText) Kind() Kind { return KindPlainText }

// Resolve returns p unchanged.
func (p PlainText) Resolve(context.Context, Fetcher) (Resolved, error) { return p, nil }

func (p PlainText) Source() string { return abbreviate(string(p)) }

// Format returns the text.
func (p PlainText) Format() (string, error) { return string(p), nil }

// Year is never known for plain text.
func (PlainText) Year() (int, bool) { return 0, false }

func (PlainText) isCitation() {}

// PlainTextWithYear is literal display text with an optional year. It is
// also the display form every resolved citation is converted to.
type PlainTextWithYear struct {
	Text string `yaml:"text"`
	Year *int   `yaml:"year,omitempty"`
}

func (PlainTextWithYear) Kind() Kind { return KindPlainTextWithYear }

// Resolve returns the text and year as given.
func (p PlainTextWithYear) Resolve(context.Context, Fetcher) (Resolved, error) {
	r := plainResolved{text: p.Text}
	if p.Year != nil {
		r.year, r.hasYear = *p.Year, true
	}
	return r, nil
}

func (p PlainTextWithYear) Source() string { return abbreviate(p.Text) }

func (PlainTextWithYear) isCitation() {}

type plainResolved struct {
	text    string
	year    int
	hasYear bool
}

func (r plainResolved) Format() (string, error) { return r.text, nil }
func (r plainResolved) Year() (int, bool)       { return r.year, r.hasYear }

// Display converts a resolved citation to its display form.
func Display(r Resolved) (PlainTextWithYear, error) {
	text, err := r.Format()
	if err != nil {
		return PlainTextWithYear{}, err
	}
	out := PlainTextWithYear{Text: text}
	if y, ok := r.Year(); ok {
		out.Year = &y
	}
	return out, nil
}

// Text returns the display form of an already resolved citation. Citations
// that still need fetching or parsing report false.
func Text(c Citation) (PlainTextWithYear, bool) {
	switch c := c.(type) {
	case PlainText:
		return PlainTextWithYear{Text: string(c)}, true
	case PlainTextWithYear:
		return c, true
	}
	return PlainTextWithYear{}, false
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
