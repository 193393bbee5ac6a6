package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/vinayprograms/resumekit/cache"
	"github.com/vinayprograms/resumekit/citation"
	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/projects"
	"github.com/vinayprograms/resumekit/render"
)

const input = `
name: Ada Example
contacts:
  - {type: github, value: ada}
experiences:
  - company: Acme
    position: Engineer
    duration: 2016-07~
    description: Built the engine[^post] after reading[^paper].
projects:
  - from: github
    repos: [ada/x, ada/y]
  - name: x
    description: Hand written
  - order_by: stars
references:
  unused: Never cited
  post: {url: "https://blog.example/engine"}
  paper: {doi: "10.1/engine"}
  untitled: {url: "https://blog.example/untitled"}
publications:
  - {text: Notes, year: 1843}
  - {url: "https://blog.example/untitled"}
`

type fakeSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSource) ListOwned(context.Context, bool, projects.Auth) ([]projects.Project, error) {
	return nil, nil
}

func (f *fakeSource) ListByNames(_ context.Context, names []string, auth projects.Auth) ([]projects.Project, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	stars := map[string]uint64{"ada/x": 10, "ada/y": 50}
	var out []projects.Project
	for _, n := range names {
		out = append(out, projects.Project{
			Name:        strings.TrimPrefix(n, "ada/"),
			Description: projects.Ptr("fetched " + n),
			Stars:       projects.Ptr(stars[n]),
		})
	}
	return out, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	pages map[string]string
	csl   string
}

func (f *fakeFetcher) Open(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New(errors.ErrCodeHTTPStatus, "not found")
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

func (f *fakeFetcher) FetchCSL(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return []byte(f.csl), nil
}

func newPipeline(t *testing.T, store cache.Store) (*Pipeline, *fakeSource, *fakeFetcher) {
	t.Helper()
	renderer, err := render.New(nil)
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}
	src := &fakeSource{}
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://blog.example/engine":   "<html><head><title>Engine Notes</title></head></html>",
			"https://blog.example/untitled": "<html><body>no title</body></html>",
		},
		csl: `{"title":"On Engines","author":[{"given":"Ada","family":"Example"}],"issued":{"date-parts":[[1843]]},"DOI":"10.1/engine"}`,
	}
	return &Pipeline{
		Sources:  map[string]projects.Source{"github": src},
		Fetcher:  fetcher,
		Cache:    store,
		Renderer: renderer,
	}, src, fetcher
}

func TestBuild(t *testing.T) {
	p, _, _ := newPipeline(t, nil)
	var buf bytes.Buffer
	if err := p.Build(context.Background(), []byte(input), &buf); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out := buf.String()

	if y, x := strings.Index(out, "<b>y</b>"), strings.Index(out, "<b>x</b>"); y < 0 || x < 0 || y > x {
		t.Errorf("projects should be ordered by stars [y x]:\n%s", out)
	}
	if !strings.Contains(out, "Hand written") || strings.Contains(out, "fetched ada/x") {
		t.Error("manual description should override the fetched one")
	}
	if !strings.Contains(out, `<li id="ref-1" value="1"><b>Engine Notes.</b>`) {
		t.Errorf("first cited reference missing:\n%s", out)
	}
	if !strings.Contains(out, `<li id="ref-2" value="2">Ada Example. 1843. <b>On Engines.</b>`) {
		t.Errorf("second cited reference missing:\n%s", out)
	}
	for _, absent := range []string{"Never cited", "blog.example/untitled"} {
		if strings.Contains(out, absent) {
			t.Errorf("output should not contain %q", absent)
		}
	}
	if !strings.Contains(out, "Notes <span class=\"year\">(1843)</span>") {
		t.Error("publication with year missing")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	p, _, _ := newPipeline(t, nil)
	var a, b bytes.Buffer
	if err := p.Build(context.Background(), []byte(input), &a); err != nil {
		t.Fatal(err)
	}
	if err := p.Build(context.Background(), []byte(input), &b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("identical input must render identically")
	}
}

func TestBuild_Cache(t *testing.T) {
	store := cache.NewMemoryStore()
	p, src, fetcher := newPipeline(t, store)

	var first bytes.Buffer
	if err := p.Build(context.Background(), []byte(input), &first); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	if src.calls != 1 || fetcher.calls != 4 {
		t.Fatalf("miss should hit the network: source=%d fetch=%d", src.calls, fetcher.calls)
	}
	if _, err := store.Get(cache.Fingerprint([]byte(input))); err != nil {
		t.Fatalf("resolved record not cached: %v", err)
	}

	var second bytes.Buffer
	if err := p.Build(context.Background(), []byte(input), &second); err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if src.calls != 1 || fetcher.calls != 4 {
		t.Errorf("hit must not touch the network: source=%d fetch=%d", src.calls, fetcher.calls)
	}
	if first.String() != second.String() {
		t.Error("cached build must render the same document")
	}

	edited := strings.Replace(input, "Engineer", "Lead", 1)
	if err := p.Build(context.Background(), []byte(edited), io.Discard); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Error("an edited input must miss the cache")
	}
}

func TestBuild_CorruptCacheEntry(t *testing.T) {
	store := cache.NewMemoryStore()
	store.Put(cache.Fingerprint([]byte(input)), []byte("name: ["))
	p, src, _ := newPipeline(t, store)
	if err := p.Build(context.Background(), []byte(input), io.Discard); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if src.calls != 1 {
		t.Error("unreadable entry should be treated as a miss")
	}
}

func TestResolve(t *testing.T) {
	p, _, _ := newPipeline(t, nil)
	person, err := p.Load(context.Background(), []byte(input))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(person.References) != 3 {
		t.Fatalf("references = %d, want 3 (untitled page dropped)", len(person.References))
	}
	for _, k := range person.References {
		if _, ok := citation.Text(k.Citation); !ok {
			t.Errorf("reference %s not reduced to text", k.Key)
		}
	}
	if _, ok := person.References.Get("untitled"); ok {
		t.Error("reference without display text should be dropped")
	}
	if len(person.Publications) != 1 {
		t.Errorf("publications = %d, want 1", len(person.Publications))
	}

	for _, d := range person.Projects {
		if _, ok := d.(projects.Import); ok {
			t.Error("resolved record must not keep imports")
		}
	}
	last, ok := person.Projects[len(person.Projects)-1].(projects.SetSortOrder)
	if !ok || last.Policy != projects.PolicyManual {
		t.Errorf("last directive = %#v, want manual sort", person.Projects[len(person.Projects)-1])
	}
}

func TestBuild_Failures(t *testing.T) {
	t.Run("import", func(t *testing.T) {
		p, src, _ := newPipeline(t, nil)
		src.err = errors.Network("offline")
		var buf bytes.Buffer
		err := p.Build(context.Background(), []byte(input), &buf)
		if !errors.IsNetwork(err) {
			t.Errorf("error = %v, want network error", err)
		}
		if buf.Len() != 0 {
			t.Error("failed build must write nothing")
		}
	})
	t.Run("citation", func(t *testing.T) {
		p, _, fetcher := newPipeline(t, nil)
		fetcher.csl = "not json"
		err := p.Build(context.Background(), []byte(input), io.Discard)
		if !errors.Is(err, errors.ErrCodeMalformedCSL) {
			t.Errorf("error = %v, want MALFORMED_CSL", err)
		}
	})
	t.Run("input", func(t *testing.T) {
		p, _, _ := newPipeline(t, nil)
		err := p.Build(context.Background(), []byte("name: ["), io.Discard)
		if !errors.IsInput(err) {
			t.Errorf("error = %v, want input error", err)
		}
	})
}
