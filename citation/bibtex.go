package citation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/vinayprograms/resumekit/errors"
)

// BibtexSource cites a work by an embedded BibTeX entry.
type BibtexSource struct {
	Bibtex string `yaml:"bibtex_string"`
}

func (BibtexSource) Kind() Kind { return KindBibtex }

func (b BibtexSource) Source() string { return abbreviate(b.Bibtex) }

func (BibtexSource) isCitation() {}

// Resolve parses the entry. Only the first entry is used; extra entries
// produce a warning. No entries, a parse failure or a non-numeric year are
// fatal.
func (b BibtexSource) Resolve(_ context.Context, _ Fetcher) (Resolved, error) {
	parsed, err := bibtex.Parse(strings.NewReader(b.Bibtex))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeMalformedBibtex, "parsing bibtex")
	}
	if len(parsed.Entries) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedBibtex, "no entries found in bibtex")
	}

	entry := parsed.Entries[0]
	tags := make(map[string]string, len(entry.Fields))
	for name, value := range entry.Fields {
		if value == nil {
			continue
		}
		tags[strings.ToLower(name)] = cleanTag(value.String())
	}

	rec := &record{
		authors:   tags["author"],
		publisher: tags["publisher"],
		doi:       tags["doi"],
		url:       tags["url"],
	}
	if len(parsed.Entries) > 1 {
		rec.warnings = append(rec.warnings,
			fmt.Sprintf("%d entries found in bibtex, only %q is used", len(parsed.Entries), entry.CiteName))
	}
	if y, ok := tags["year"]; ok {
		n, err := strconv.Atoi(y)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeBadYear, "bibtex year %q is not a number", y)
		}
		rec.year, rec.hasYear = n, true
	}
	rec.title, rec.hasTitle = tags["title"]
	rec.container = tags["journal"]
	if rec.container == "" {
		rec.container = tags["booktitle"]
	}
	return rec, nil
}

// cleanTag strips grouping braces and collapses whitespace.
func cleanTag(v string) string {
	v = strings.NewReplacer("{", "", "}", "").Replace(v)
	return strings.Join(strings.Fields(v), " ")
}
