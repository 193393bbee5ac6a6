// Package pipeline turns an input record into a rendered résumé.
//
// A build fingerprints the input and consults the cache. On a miss the
// record is parsed, its project directives are interpreted against the
// configured sources and its citations are resolved in one concurrent
// batch. The resolved record is stored under the fingerprint in the same
// YAML schema as the input, with imports replaced by the ordered project
// list, so a hit needs no network access. The record is then rendered in
// two passes.
//
// Usage:
//
//	p := &pipeline.Pipeline{
//		Sources:  map[string]projects.Source{github.SourceName: gh},
//		Tokens:   creds,
//		Fetcher:  fetch.New(fetch.Config{}),
//		Cache:    store,
//		Renderer: renderer,
//		Logger:   logging.New(),
//	}
//	err := p.Build(ctx, input, os.Stdout)
package pipeline
