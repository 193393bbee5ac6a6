// Package footnote tracks which references a rendered body cites.
//
// A render runs in two passes. Pass one renders the body inside Run, which
// hands out a fresh Pass; every Cite of a key not seen before assigns it
// the next ordinal. When the pass function returns (or fails) the usage
// Table is extracted and the Pass can no longer be written. Pass two uses
// the Table with Filter to keep only cited references, ordered by first
// citation.
//
//	table, err := footnote.Run(func(p *footnote.Pass) error {
//	    return renderBody(p)
//	})
//	refs := footnote.Filter(references, func(r Ref) string { return r.Key }, table)
package footnote
