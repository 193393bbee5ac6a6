// Package render turns a resolved person record into an HTML résumé.
//
// Templates use text/template; the output is not escaped. Rendering runs
// twice. The first pass renders the whole document to learn which
// references the markdown bodies cite through [^key] footnotes. The
// second pass renders the document with the reference list filtered to
// cited keys, numbered by first citation.
//
// Template functions:
//
//	md             markdown to HTML, with [^key] citations
//	languageStats  language bar and legend for a project
//	emph           underline every occurrence of a pattern
package render
