package citation

import (
	"context"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vinayprograms/resumekit/errors"
)

// DOISource cites a work by its DOI. The record is fetched as CSL-JSON.
type DOISource struct {
	DOI string `yaml:"doi"`
}

func (DOISource) Kind() Kind { return KindDOI }

func (d DOISource) Source() string { return d.DOI }

func (DOISource) isCitation() {}

// Resolve fetches and parses the CSL-JSON record. Invalid JSON is fatal.
func (d DOISource) Resolve(ctx context.Context, f Fetcher) (Resolved, error) {
	data, err := f.FetchCSL(ctx, d.DOI)
	if err != nil {
		return nil, err
	}
	rec, err := parseCSL(data)
	if err != nil {
		return nil, errors.Wrap(err, "doi "+d.DOI, errors.WithMetadata("doi", d.DOI))
	}
	return rec, nil
}

// record holds the fields shared by CSL and BibTeX display text.
type record struct {
	authors   string
	year      int
	hasYear   bool
	title     string
	hasTitle  bool
	container string
	publisher string
	doi       string
	url       string
	warnings  []string
}

func parseCSL(data []byte) (*record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeMalformedCSL, "invalid CSL-JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New(errors.ErrCodeMalformedCSL, "CSL-JSON is not an object")
	}

	rec := &record{}
	var names []string
	for _, a := range doc.Get("author").Array() {
		name := strings.TrimSpace(a.Get("given").String() + " " + a.Get("family").String())
		if name == "" {
			name = a.Get("literal").String()
		}
		if name != "" {
			names = append(names, name)
		}
	}
	rec.authors = strings.Join(names, ", ")

	if y := doc.Get("issued.date-parts.0.0"); y.Exists() {
		n, err := strconv.Atoi(strings.TrimSpace(y.String()))
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeMalformedCSL, "issued year %q is not a number", y.String())
		}
		rec.year, rec.hasYear = n, true
	}
	rec.title, rec.hasTitle = firstString(doc.Get("title"))
	rec.container, _ = firstString(doc.Get("container-title"))
	rec.publisher = doc.Get("publisher").String()
	rec.doi = doc.Get("DOI").String()
	rec.url = doc.Get("URL").String()
	return rec, nil
}

// firstString reads a CSL field that may be a string or an array of strings.
func firstString(v gjson.Result) (string, bool) {
	if v.IsArray() {
		items := v.Array()
		if len(items) == 0 {
			return "", false
		}
		v = items[0]
	}
	if !v.Exists() || v.String() == "" {
		return "", false
	}
	return v.String(), true
}

// Format renders authors, year, title, container and link.
func (r *record) Format() (string, error) {
	if !r.hasTitle {
		return "", errors.MissingField("title")
	}
	var b strings.Builder
	if r.authors != "" {
		b.WriteString(r.authors + ". ")
	}
	if r.hasYear {
		b.WriteString(strconv.Itoa(r.year) + ". ")
	}
	b.WriteString("<b>" + r.title + ".</b> ")
	if r.container != "" {
		b.WriteString("In <i>" + r.container + "</i>")
		if r.publisher != "" {
			b.WriteString(", " + r.publisher)
		}
		b.WriteString(". ")
	}
	switch {
	case r.doi != "":
		link := "https://doi.org/" + r.doi
		b.WriteString(`DOI:<a href="` + link + `">` + link + `</a>`)
	case r.url != "":
		b.WriteString(`<a href="` + r.url + `">` + r.url + `</a>`)
	}
	return b.String(), nil
}

func (r *record) Year() (int, bool) { return r.year, r.hasYear }

func (r *record) Warnings() []string { return r.warnings }
