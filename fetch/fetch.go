package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vinayprograms/resumekit/errors"
)

// DefaultDOIBaseURL is the DOI resolution service.
const DefaultDOIBaseURL = "https://doi.org/"

// CSLAccept is the Accept header sent for DOI content negotiation.
const CSLAccept = "application/vnd.citationstyles.csl+json, application/citeproc+json;q=0.9"

// maxCSLBytes caps a CSL-JSON response.
const maxCSLBytes = 8 << 20

// Config configures a Client.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds each request including redirects. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size. Values below 1 mean 1.
	Burst int

	// DOIBaseURL overrides DefaultDOIBaseURL.
	DOIBaseURL string

	// Base is the underlying transport. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// Client fetches pages and CSL-JSON records.
type Client struct {
	http    *http.Client
	doiBase string
}

// New creates a Client.
func New(cfg Config) *Client {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	doiBase := cfg.DOIBaseURL
	if doiBase == "" {
		doiBase = DefaultDOIBaseURL
	}
	if !strings.HasSuffix(doiBase, "/") {
		doiBase += "/"
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &Transport{
				Base:      base,
				UserAgent: cfg.UserAgent,
				Limiter:   limiter,
			},
		},
		doiBase: doiBase,
	}
}

// HTTPClient returns the throttled client so other collaborators (the
// project source) share the same User-Agent and rate limit.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Open issues a GET and returns the response body for incremental reading.
// The caller must close it.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "building request",
			errors.WithMetadata("url", rawURL))
	}
	return c.do(req)
}

// FetchCSL resolves a DOI through content negotiation and returns the
// CSL-JSON body. Redirects to the registration agency are followed.
func (c *Client) FetchCSL(ctx context.Context, doi string) ([]byte, error) {
	target := c.doiBase + strings.TrimPrefix(strings.TrimSpace(doi), "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "building request",
			errors.WithMetadata("doi", doi))
	}
	req.Header.Set("Accept", CSLAccept)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxCSLBytes))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeNetwork, "reading CSL response",
			errors.WithMetadata("doi", doi))
	}
	return data, nil
}

func (c *Client) do(req *http.Request) (io.ReadCloser, error) {
	target := req.URL.String()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeNetwork, "GET "+target,
			errors.WithMetadata("url", target))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.New(errors.ErrCodeHTTPStatus,
			fmt.Sprintf("GET %s: %s", target, resp.Status),
			errors.WithMetadata("url", target),
			errors.WithMetadata("status", fmt.Sprint(resp.StatusCode)))
	}
	return resp.Body, nil
}

// Transport sets the User-Agent and applies the rate limit before
// delegating to Base.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	Limiter   *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if t.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
