// OpenTelemetry tracing for project imports, citation fetches and render
// passes.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps OpenTelemetry tracing with pipeline-specific helpers.
type Tracer struct {
	tracer trace.Tracer
	debug  bool // When true, include payload excerpts in span attributes
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
	}
	return globalTracer
}

// NewTracer creates a new tracer with the given name.
func NewTracer(name string, debug bool) *Tracer {
	return &Tracer{
		tracer: otel.Tracer(name),
		debug:  debug,
	}
}

// Debug returns whether debug mode is enabled.
func (t *Tracer) Debug() bool {
	return t.debug
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// --- Import Spans ---

// ImportSpanOptions contains options for project import spans.
type ImportSpanOptions struct {
	Source   string
	Repos    []string
	Projects int
}

// StartImportSpan starts a span for one import directive.
func (t *Tracer) StartImportSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "import."+source, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("import.source", source))
	return ctx, span
}

// EndImportSpan ends an import span with attributes.
func (t *Tracer) EndImportSpan(span trace.Span, opts ImportSpanOptions, err error) {
	attrs := []attribute.KeyValue{
		attribute.Int("import.projects", opts.Projects),
	}
	if len(opts.Repos) > 0 {
		attrs = append(attrs, attribute.StringSlice("import.repos", opts.Repos))
	}
	span.SetAttributes(attrs...)
	endSpan(span, err)
}

// --- Fetch Spans ---

// FetchSpanOptions contains options for citation fetch spans.
type FetchSpanOptions struct {
	Kind    string
	Source  string
	Payload string // Only included if debug=true
}

// StartFetchSpan starts a span for a citation fetch.
func (t *Tracer) StartFetchSpan(ctx context.Context, kind string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "citation."+kind, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("citation.kind", kind))
	return ctx, span
}

// EndFetchSpan ends a fetch span with attributes.
func (t *Tracer) EndFetchSpan(span trace.Span, opts FetchSpanOptions, err error) {
	span.SetAttributes(attribute.String("citation.source", truncate(opts.Source, 500)))
	if t.debug && opts.Payload != "" {
		span.SetAttributes(attribute.String("citation.payload", truncate(opts.Payload, 4000)))
	}
	endSpan(span, err)
}

// --- Render Spans ---

// StartRenderSpan starts a span for one render pass.
func (t *Tracer) StartRenderSpan(ctx context.Context, pass int) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "render.pass", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.Int("render.pass", pass))
	return ctx, span
}

// EndRenderSpan ends a render span.
func (t *Tracer) EndRenderSpan(span trace.Span, citedKeys int, err error) {
	span.SetAttributes(attribute.Int("render.cited_keys", citedKeys))
	endSpan(span, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
