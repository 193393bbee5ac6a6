// Package citation resolves bibliographic references into display text.
//
// A Citation is one of five variants: PlainText, PlainTextWithYear,
// URLSource, DOISource and BibtexSource. Resolution is an explicit
// two-state transition: Resolve fetches or parses the source and returns a
// distinct Resolved value, leaving the unresolved citation untouched.
// PlainText is its own resolved form.
//
// Resolve failures (transport errors, malformed BibTeX or CSL-JSON, a
// non-numeric year) are fatal. Format failures (a page without a title, a
// record without a title) are recoverable: the caller drops the citation.
//
// # Usage
//
//	r := &citation.Resolver{Fetcher: fetch.New(cfg), Logger: logger}
//	resolved, err := r.ResolveAll(ctx, cites)
//	for i, res := range resolved {
//	    text, err := citation.Display(res)
//	    if err != nil {
//	        continue // dropped
//	    }
//	    _ = text
//	}
package citation
