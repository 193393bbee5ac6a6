package citation

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
)

type fakeFetcher struct {
	pages map[string]string
	csl   map[string]string
	calls atomic.Int32
}

func (f *fakeFetcher) Open(_ context.Context, url string) (io.ReadCloser, error) {
	f.calls.Add(1)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.Network("no route to " + url)
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

func (f *fakeFetcher) FetchCSL(_ context.Context, doi string) ([]byte, error) {
	f.calls.Add(1)
	data, ok := f.csl[doi]
	if !ok {
		return nil, errors.New(errors.ErrCodeHTTPStatus, "404 for "+doi)
	}
	return []byte(data), nil
}

func mustDisplay(t *testing.T, c Citation, f Fetcher) PlainTextWithYear {
	t.Helper()
	res, err := c.Resolve(context.Background(), f)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	out, err := Display(res)
	if err != nil {
		t.Fatalf("Display() error = %v", err)
	}
	return out
}

// ============================================================================
// Plain text
// ============================================================================

func TestPlainText(t *testing.T) {
	out := mustDisplay(t, PlainText("Some talk, 2019"), nil)
	if out.Text != "Some talk, 2019" || out.Year != nil {
		t.Errorf("Display() = %+v", out)
	}
}

func TestPlainTextWithYear(t *testing.T) {
	y := 2018
	out := mustDisplay(t, PlainTextWithYear{Text: "Paper", Year: &y}, nil)
	if out.Text != "Paper" || out.Year == nil || *out.Year != 2018 {
		t.Errorf("Display() = %+v", out)
	}
}

func TestText(t *testing.T) {
	y := 2018
	tests := []struct {
		name     string
		in       Citation
		wantOK   bool
		wantText string
		wantYear bool
	}{
		{"plain", PlainText("Talk"), true, "Talk", false},
		{"with year", PlainTextWithYear{Text: "Paper", Year: &y}, true, "Paper", true},
		{"url", URLSource{URL: "https://example.com"}, false, "", false},
		{"doi", DOISource{DOI: "10.1/1"}, false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Text(tt.in)
			if ok != tt.wantOK || got.Text != tt.wantText || (got.Year != nil) != tt.wantYear {
				t.Errorf("Text() = %+v, %v", got, ok)
			}
		})
	}
}

// ============================================================================
// URL
// ============================================================================

func TestURLSource(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://a.example/post": `<html><head><title>First &amp; Best</title></head>
<body><svg><title>Second</title></svg></body></html>`,
	}}
	out := mustDisplay(t, URLSource{URL: "https://a.example/post"}, f)
	want := `<b>First & Best.</b> <a href="https://a.example/post">https://a.example/post</a>`
	if out.Text != want {
		t.Errorf("Text = %q, want %q", out.Text, want)
	}
	if out.Year != nil {
		t.Error("URL citations never have a year")
	}
}

func TestURLSource_NoTitle(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://b.example": "<html><body>hi</body></html>"}}
	res, err := URLSource{URL: "https://b.example"}.Resolve(context.Background(), f)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	_, err = Display(res)
	if !errors.Is(err, errors.ErrCodeNoDisplayText) {
		t.Errorf("expected NO_DISPLAY_TEXT, got %v", err)
	}
}

func TestURLSource_FetchFailure(t *testing.T) {
	_, err := URLSource{URL: "https://down.example"}.Resolve(context.Background(), &fakeFetcher{})
	if !errors.IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
}

// ============================================================================
// DOI
// ============================================================================

func TestDOISource(t *testing.T) {
	f := &fakeFetcher{csl: map[string]string{"10.1/1": `{
		"author": [{"given": "Jane", "family": "Doe"}, {"given": "Bo", "family": "Li"}],
		"issued": {"date-parts": [[2021, 3]]},
		"title": "Fast Things",
		"container-title": ["Journal of Speed"],
		"publisher": "ACM",
		"DOI": "10.1/1",
		"URL": "http://dx.doi.org/10.1/1"
	}`}}
	out := mustDisplay(t, DOISource{DOI: "10.1/1"}, f)
	want := `Jane Doe, Bo Li. 2021. <b>Fast Things.</b> In <i>Journal of Speed</i>, ACM. ` +
		`DOI:<a href="https://doi.org/10.1/1">https://doi.org/10.1/1</a>`
	if out.Text != want {
		t.Errorf("Text = %q\nwant    %q", out.Text, want)
	}
	if out.Year == nil || *out.Year != 2021 {
		t.Errorf("Year = %v", out.Year)
	}
}

func TestDOISource_URLFallback(t *testing.T) {
	f := &fakeFetcher{csl: map[string]string{"10.2/2": `{"title": "T", "container-title": "C", "URL": "https://x.example/t"}`}}
	out := mustDisplay(t, DOISource{DOI: "10.2/2"}, f)
	want := `<b>T.</b> In <i>C</i>. <a href="https://x.example/t">https://x.example/t</a>`
	if out.Text != want {
		t.Errorf("Text = %q, want %q", out.Text, want)
	}
}

func TestDOISource_InvalidJSONIsFatal(t *testing.T) {
	f := &fakeFetcher{csl: map[string]string{"10.3/3": `<html>not json</html>`}}
	_, err := DOISource{DOI: "10.3/3"}.Resolve(context.Background(), f)
	if !errors.Is(err, errors.ErrCodeMalformedCSL) {
		t.Errorf("expected MALFORMED_CSL, got %v", err)
	}
}

func TestDOISource_MissingTitleIsRecoverable(t *testing.T) {
	f := &fakeFetcher{csl: map[string]string{"10.4/4": `{"DOI": "10.4/4"}`}}
	res, err := DOISource{DOI: "10.4/4"}.Resolve(context.Background(), f)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := res.Format(); !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

// ============================================================================
// BibTeX
// ============================================================================

const exampleBib = `@article{doe2020,
  author = {Doe, J.},
  year = {2020},
  title = {Foo},
  journal = {Bar},
  DOI = {10.1/1}
}`

func TestBibtexSource(t *testing.T) {
	out := mustDisplay(t, BibtexSource{Bibtex: exampleBib}, nil)
	want := `Doe, J.. 2020. <b>Foo.</b> In <i>Bar</i>. DOI:<a href="https://doi.org/10.1/1">https://doi.org/10.1/1</a>`
	if out.Text != want {
		t.Errorf("Text = %q\nwant    %q", out.Text, want)
	}
	if out.Year == nil || *out.Year != 2020 {
		t.Errorf("Year = %v", out.Year)
	}
}

func TestBibtexSource_NoEntries(t *testing.T) {
	_, err := BibtexSource{Bibtex: ""}.Resolve(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeMalformedBibtex) {
		t.Errorf("expected MALFORMED_BIBTEX, got %v", err)
	}
}

func TestBibtexSource_BadYear(t *testing.T) {
	bib := `@misc{x, title = {T}, year = {soon}}`
	_, err := BibtexSource{Bibtex: bib}.Resolve(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeBadYear) {
		t.Errorf("expected BAD_YEAR, got %v", err)
	}
}

func TestBibtexSource_MissingTitle(t *testing.T) {
	res, err := BibtexSource{Bibtex: `@misc{x, author = {A}}`}.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := Display(res); !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestBibtexSource_ExtraEntriesWarn(t *testing.T) {
	bib := `@misc{a, title = {One}}
@misc{b, title = {Two}}`
	var buf bytes.Buffer
	logger := logging.New()
	logger.SetOutput(&buf)

	r := &Resolver{Logger: logger}
	resolved, err := r.ResolveAll(context.Background(), []Citation{BibtexSource{Bibtex: bib}})
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	text, _ := resolved[0].Format()
	if text != "<b>One.</b> " {
		t.Errorf("Format() = %q", text)
	}
	if !strings.Contains(buf.String(), "2 entries found") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

// ============================================================================
// Batch resolution
// ============================================================================

func TestResolveAll_SlotAligned(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{"https://a": "<title>A</title>", "https://b": "<title>B</title>"},
		csl:   map[string]string{"10.1/1": `{"title": "D"}`},
	}
	cites := []Citation{
		URLSource{URL: "https://a"},
		PlainText("plain"),
		DOISource{DOI: "10.1/1"},
		URLSource{URL: "https://b"},
	}
	resolved, err := (&Resolver{Fetcher: f, Limit: 2}).ResolveAll(context.Background(), cites)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	want := []string{
		`<b>A.</b> <a href="https://a">https://a</a>`,
		"plain",
		"<b>D.</b> ",
		`<b>B.</b> <a href="https://b">https://b</a>`,
	}
	for i, res := range resolved {
		got, err := res.Format()
		if err != nil || got != want[i] {
			t.Errorf("slot %d = %q, %v; want %q", i, got, err, want[i])
		}
	}
	if f.calls.Load() != 3 {
		t.Errorf("fetch calls = %d, want 3", f.calls.Load())
	}
}

func TestResolveAll_FirstFailureFailsBatch(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://a": "<title>A</title>"}}
	cites := []Citation{URLSource{URL: "https://a"}, DOISource{DOI: "10.9/missing"}}
	resolved, err := (&Resolver{Fetcher: f}).ResolveAll(context.Background(), cites)
	if err == nil {
		t.Fatal("expected error")
	}
	if resolved != nil {
		t.Error("failed batch must not return partial results")
	}
	if !errors.Is(err, errors.ErrCodeHTTPStatus) {
		t.Errorf("expected HTTP_STATUS to survive wrapping, got %v", err)
	}
}

// ============================================================================
// YAML
// ============================================================================

func TestDecodeYAML(t *testing.T) {
	src := `
refs:
  plain: Just text
  dated: {text: Old paper, year: 1999}
  web: {url: "https://a.example"}
  paper: {doi: "10.1/1"}
  bib: {bibtex_string: "@misc{x, title={T}}"}
pubs:
  - Talk
  - {doi: "10.2/2"}
`
	var doc struct {
		Refs KeyedList `yaml:"refs"`
		Pubs List      `yaml:"pubs"`
	}
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	wantKinds := []Kind{KindPlainText, KindPlainTextWithYear, KindURL, KindDOI, KindBibtex}
	if len(doc.Refs) != len(wantKinds) {
		t.Fatalf("refs = %d", len(doc.Refs))
	}
	for i, k := range wantKinds {
		if doc.Refs[i].Citation.Kind() != k {
			t.Errorf("refs[%d] (%s) kind = %s, want %s", i, doc.Refs[i].Key, doc.Refs[i].Citation.Kind(), k)
		}
	}
	if c, ok := doc.Refs.Get("web"); !ok || c.(URLSource).URL != "https://a.example" {
		t.Errorf("Get(web) = %v, %v", c, ok)
	}
	if len(doc.Pubs) != 2 || doc.Pubs[1].Kind() != KindDOI {
		t.Errorf("pubs = %+v", doc.Pubs)
	}
}

func TestDecodeYAML_Unknown(t *testing.T) {
	var l List
	err := yaml.Unmarshal([]byte("- {isbn: '123'}\n"), &l)
	if !errors.IsInput(err) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestKeyedList_RoundTripKeepsOrder(t *testing.T) {
	y := 2001
	in := KeyedList{
		{Key: "z", Citation: PlainText("last letter")},
		{Key: "a", Citation: PlainTextWithYear{Text: "first", Year: &y}},
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "z: last letter\n") {
		t.Errorf("order lost:\n%s", data)
	}

	var out KeyedList
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(out) != 2 || out[0].Key != "z" || out[1].Citation.Kind() != KindPlainTextWithYear {
		t.Errorf("round trip = %+v", out)
	}
}
