// Package fetch is the HTTP transport behind citation resolution and project
// imports.
//
// A Client streams web pages for title scraping and performs DOI content
// negotiation for CSL-JSON, following redirects. Every request carries the
// configured User-Agent and, when a rate is configured, waits on a shared
// token bucket. The transport never retries; failures surface as network
// errors from the errors package.
//
// # Usage
//
//	c := fetch.New(fetch.Config{UserAgent: "resumekit/1.0", Timeout: 30 * time.Second})
//
//	body, err := c.Open(ctx, "https://example.com/post")
//	defer body.Close()
//
//	csl, err := c.FetchCSL(ctx, "10.1145/3290368")
package fetch
