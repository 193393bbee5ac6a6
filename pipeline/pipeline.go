package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/vinayprograms/resumekit/cache"
	"github.com/vinayprograms/resumekit/citation"
	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/projects"
	"github.com/vinayprograms/resumekit/render"
	"github.com/vinayprograms/resumekit/resume"
	"github.com/vinayprograms/resumekit/telemetry"
)

// Pipeline holds the collaborators of a build.
type Pipeline struct {
	Sources map[string]projects.Source
	Tokens  projects.TokenProvider
	Fetcher citation.Fetcher

	// Concurrency caps parallel citation fetches. Zero means no cap.
	Concurrency int

	// Cache stores resolved records by input fingerprint. Nil disables it.
	Cache cache.Store

	Renderer *render.Renderer
	Logger   *logging.Logger
}

// Build renders input to w.
func (p *Pipeline) Build(ctx context.Context, input []byte, w io.Writer) error {
	logger := p.logger()
	ctx, span := telemetry.GetTracer().StartSpan(ctx, "resumekit.build")
	defer span.End()

	person, err := p.load(ctx, input, logger)
	if err != nil {
		return err
	}

	// The loaded record holds only manual directives, so this makes no
	// source calls.
	result, err := p.interpreter(logger).Run(ctx, person.Projects, person.Viewer())
	if err != nil {
		return err
	}

	_, err = p.Renderer.Render(ctx, render.Input{Person: person, Projects: result.Projects}, w)
	return err
}

// Load returns the resolved record for input, from the cache when possible.
func (p *Pipeline) Load(ctx context.Context, input []byte) (*resume.Person, error) {
	return p.load(ctx, input, p.logger())
}

func (p *Pipeline) load(ctx context.Context, input []byte, logger *logging.Logger) (*resume.Person, error) {
	fp := cache.Fingerprint(input)

	if p.Cache != nil {
		data, err := p.Cache.Get(fp)
		switch {
		case err == nil:
			person, perr := resume.Parse(data)
			if perr == nil {
				logger.CacheHit(fp)
				return person, nil
			}
			logger.Warn("discarding unreadable cache entry", map[string]interface{}{"error": perr.Error()})
		case stderrors.Is(err, cache.ErrNotFound):
			logger.CacheMiss(fp)
		default:
			logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		}
	}

	person, err := resume.Parse(input)
	if err != nil {
		return nil, err
	}
	resolved, err := p.resolve(ctx, person, logger)
	if err != nil {
		return nil, err
	}

	if p.Cache != nil {
		data, err := resolved.Marshal()
		if err == nil {
			err = p.Cache.Put(fp, data)
		}
		if err != nil {
			logger.Warn("cache store failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return resolved, nil
}

// Resolve runs the project directives and resolves every citation. The
// returned record replaces the directives with the ordered project list and
// each citation with its display text; citations without display text are
// dropped. person is not modified.
func (p *Pipeline) Resolve(ctx context.Context, person *resume.Person) (*resume.Person, error) {
	return p.resolve(ctx, person, p.logger())
}

func (p *Pipeline) resolve(ctx context.Context, person *resume.Person, logger *logging.Logger) (*resume.Person, error) {
	result, err := p.interpreter(logger).Run(ctx, person.Projects, person.Viewer())
	if err != nil {
		return nil, errors.Wrap(err, "interpreting project directives")
	}

	cites := make([]citation.Citation, 0, len(person.References)+len(person.Publications))
	for _, k := range person.References {
		cites = append(cites, k.Citation)
	}
	cites = append(cites, person.Publications...)

	resolver := &citation.Resolver{Fetcher: p.Fetcher, Logger: logger, Limit: p.Concurrency}
	resolved, err := resolver.ResolveAll(ctx, cites)
	if err != nil {
		return nil, err
	}

	out := *person
	out.Projects = result.Directives()
	out.References = nil
	out.Publications = nil
	for i, k := range person.References {
		text, err := citation.Display(resolved[i])
		if err != nil {
			logger.CitationDropped(k.Key, err)
			continue
		}
		out.References = append(out.References, citation.Keyed{Key: k.Key, Citation: display(text)})
	}
	offset := len(person.References)
	for i := range person.Publications {
		text, err := citation.Display(resolved[offset+i])
		if err != nil {
			logger.CitationDropped(fmt.Sprintf("publications[%d]", i), err)
			continue
		}
		out.Publications = append(out.Publications, display(text))
	}
	return &out, nil
}

// display picks the narrowest citation form for text so the cached record
// reads like hand-written input.
func display(text citation.PlainTextWithYear) citation.Citation {
	if text.Year == nil {
		return citation.PlainText(text.Text)
	}
	return text
}

func (p *Pipeline) interpreter(logger *logging.Logger) *projects.Interpreter {
	return &projects.Interpreter{Sources: p.Sources, Tokens: p.Tokens, Logger: logger}
}

// logger returns a run logger tagged with a fresh trace ID.
func (p *Pipeline) logger() *logging.Logger {
	base := p.Logger
	if base == nil {
		base = logging.Nop()
	}
	return base.WithComponent("pipeline").WithTraceID(uuid.NewString())
}
