package citation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/telemetry"
)

// Resolver resolves batches of citations concurrently.
type Resolver struct {
	Fetcher Fetcher
	Logger  *logging.Logger

	// Limit caps concurrent resolutions. Zero means no cap.
	Limit int
}

// ResolveAll resolves every citation as one unordered batch. The result is
// slot-aligned with cites. The first failure cancels the batch and is
// returned; no partial result is produced.
func (r *Resolver) ResolveAll(ctx context.Context, cites []Citation) ([]Resolved, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tracer := telemetry.GetTracer()

	out := make([]Resolved, len(cites))
	g, gctx := errgroup.WithContext(ctx)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}
	for i, c := range cites {
		g.Go(func() error {
			start := time.Now()
			sctx, span := tracer.StartFetchSpan(gctx, string(c.Kind()))
			res, err := c.Resolve(sctx, r.Fetcher)
			tracer.EndFetchSpan(span, telemetry.FetchSpanOptions{
				Kind:   string(c.Kind()),
				Source: c.Source(),
			}, err)
			if err != nil {
				return errors.Wrap(err, "resolving "+string(c.Kind())+" citation "+c.Source())
			}
			logger.CitationResolved(string(c.Kind()), c.Source(), time.Since(start))
			if w, ok := res.(warner); ok {
				for _, msg := range w.Warnings() {
					logger.Warn(msg, map[string]interface{}{"source": c.Source()})
				}
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
