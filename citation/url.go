package citation

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/vinayprograms/resumekit/errors"
)

// URLSource cites a web page by its title.
type URLSource struct {
	URL string `yaml:"url"`
}

func (URLSource) Kind() Kind { return KindURL }

func (u URLSource) Source() string { return u.URL }

func (URLSource) isCitation() {}

// Resolve fetches the page and keeps the text of its first <title>.
func (u URLSource) Resolve(ctx context.Context, f Fetcher) (Resolved, error) {
	body, err := f.Open(ctx, u.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	title, found, err := firstTitle(body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeNetwork, "reading page",
			errors.WithMetadata("url", u.URL))
	}
	return urlResolved{url: u.URL, title: title, found: found}, nil
}

// firstTitle scans a document for the first title element. Scanning stops
// as soon as it closes.
func firstTitle(r io.Reader) (string, bool, error) {
	z := html.NewTokenizer(r)
	var (
		inTitle bool
		text    []byte
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", false, err
			}
			return "", false, nil
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				text = append(text, z.Text()...)
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); inTitle && string(name) == "title" {
				return string(text), true, nil
			}
		}
	}
}

type urlResolved struct {
	url   string
	title string
	found bool
}

func (r urlResolved) Format() (string, error) {
	if !r.found {
		return "", errors.New(errors.ErrCodeNoDisplayText, "page has no title",
			errors.WithMetadata("url", r.url))
	}
	return fmt.Sprintf(`<b>%s.</b> <a href="%s">%s</a>`, r.title, r.url, r.url), nil
}

func (urlResolved) Year() (int, bool) { return 0, false }
