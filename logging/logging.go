// Package logging provides leveled diagnostic output for resumekit.
// Diagnostics always go to stderr so the rendered document on stdout stays
// clean. Verbosity is controlled from outside the program through the
// RESUMEKIT_LOG environment variable.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// EnvLevel names the environment variable holding the minimum level.
const EnvLevel = "RESUMEKIT_LOG"

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a case-insensitive level name. Unknown or empty names
// return LevelWarn and false.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if l == "WARNING" {
		l = LevelWarn
	}
	if _, ok := levelPriority[l]; !ok {
		return LevelWarn, false
	}
	return l, true
}

// sink is shared between a logger and the loggers derived from it so that
// lines from different components never interleave.
type sink struct {
	mu     sync.Mutex
	output io.Writer
}

// Logger writes leveled lines to stderr.
type Logger struct {
	sink      *sink
	minLevel  Level
	component string
	traceID   string
}

// New creates a new Logger writing to stderr at WARN, or at the level named
// by RESUMEKIT_LOG when set.
func New() *Logger {
	level := LevelWarn
	if l, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		level = l
	}
	return &Logger{
		sink:     &sink{output: os.Stderr},
		minLevel: level,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		sink:     &sink{output: io.Discard},
		minLevel: LevelError,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		sink:      l.sink,
		minLevel:  l.minLevel,
		component: component,
		traceID:   l.traceID,
	}
}

// WithTraceID returns a new logger with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		sink:      l.sink,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   traceID,
	}
}

// TraceID returns the trace ID attached to this logger.
func (l *Logger) TraceID() string {
	return l.traceID
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// Level returns the minimum log level.
func (l *Logger) Level() Level {
	return l.minLevel
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return levelPriority[level] >= levelPriority[l.minLevel]
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs sorted by key.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.traceID != "" {
		fieldStr += " trace=" + l.traceID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output.Write([]byte(line))
}

// --- Pipeline event helpers ---

// ImportStart logs the start of a project import directive.
func (l *Logger) ImportStart(source string, index int) {
	l.Info("import_start", map[string]interface{}{
		"source":    source,
		"directive": index,
	})
}

// ImportComplete logs the end of a project import directive.
func (l *Logger) ImportComplete(source string, index, count int, duration time.Duration) {
	l.Info("import_complete", map[string]interface{}{
		"source":    source,
		"directive": index,
		"projects":  count,
		"duration":  duration.String(),
	})
}

// ProjectMerged logs a manual record merged over a fetched one.
func (l *Logger) ProjectMerged(name string) {
	l.Debug("project_merged", map[string]interface{}{
		"project": name,
	})
}

// CitationResolved logs a completed citation fetch.
func (l *Logger) CitationResolved(kind, source string, duration time.Duration) {
	l.Debug("citation_resolved", map[string]interface{}{
		"kind":     kind,
		"source":   source,
		"duration": duration.String(),
	})
}

// CitationDropped logs a citation that produced no display text.
func (l *Logger) CitationDropped(key string, err error) {
	fields := map[string]interface{}{
		"key": key,
	}
	if err != nil {
		fields["reason"] = err.Error()
	}
	l.Debug("citation_dropped", fields)
}

// CacheHit logs a cached record being used in place of the fetch pipeline.
func (l *Logger) CacheHit(fingerprint string) {
	l.Info("cache_hit", map[string]interface{}{
		"fingerprint": shortFingerprint(fingerprint),
	})
}

// CacheMiss logs a cache lookup that found nothing.
func (l *Logger) CacheMiss(fingerprint string) {
	l.Info("cache_miss", map[string]interface{}{
		"fingerprint": shortFingerprint(fingerprint),
	})
}

// PassComplete logs the end of a render pass.
func (l *Logger) PassComplete(pass int, citedKeys int, duration time.Duration) {
	l.Debug("render_pass_complete", map[string]interface{}{
		"pass":     pass,
		"cited":    citedKeys,
		"duration": duration.String(),
	})
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
