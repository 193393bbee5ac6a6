package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
)

// Phases used by the CLI.
const (
	// PhaseFlush drains buffered output such as pending spans.
	PhaseFlush = 10

	// PhaseStorage closes files and databases.
	PhaseStorage = 20
)

// DefaultTimeout bounds Close when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Func releases one resource.
type Func func(ctx context.Context) error

// HandlerResult is the outcome of one handler.
type HandlerResult struct {
	Name     string
	Phase    int
	Duration time.Duration
	Err      error
}

// Result is the outcome of Close.
type Result struct {
	Duration time.Duration
	Handlers []HandlerResult
	Err      error
}

// Failed returns the names of handlers that returned an error.
func (r *Result) Failed() []string {
	var names []string
	for _, h := range r.Handlers {
		if h.Err != nil {
			names = append(names, h.Name)
		}
	}
	return names
}

type registration struct {
	name  string
	phase int
	fn    Func
}

// Coordinator runs registered handlers once, phase by phase.
type Coordinator struct {
	logger *logging.Logger

	mu       sync.Mutex
	handlers []registration
	once     sync.Once
	result   *Result
}

// New creates a Coordinator. A nil logger discards progress lines.
func New(logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Coordinator{logger: logger.WithComponent("shutdown")}
}

// Register adds a handler. Handlers registered after Close never run.
func (c *Coordinator) Register(name string, phase int, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, registration{name: name, phase: phase, fn: fn})
}

// Close runs every handler within timeout and returns the joined handler
// errors. Later calls return the first call's error.
func (c *Coordinator) Close(timeout time.Duration) error {
	c.once.Do(func() {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res := c.run(ctx)
		c.mu.Lock()
		c.result = res
		c.mu.Unlock()
	})
	return c.Result().Err
}

// Result returns the outcome of Close, or nil before Close.
func (c *Coordinator) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Coordinator) run(ctx context.Context) *Result {
	c.mu.Lock()
	handlers := make([]registration, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].phase < handlers[j].phase
	})

	start := time.Now()
	res := &Result{Handlers: make([]HandlerResult, 0, len(handlers))}
	var errs []error
	for _, group := range groupByPhase(handlers) {
		if ctx.Err() != nil {
			errs = append(errs, errors.WrapWithCode(ctx.Err(), errors.ErrCodeInternal, "shutdown timed out"))
			break
		}
		for _, hr := range c.runPhase(ctx, group) {
			res.Handlers = append(res.Handlers, hr)
			if hr.Err != nil {
				errs = append(errs, errors.Wrap(hr.Err, "closing "+hr.Name))
			}
		}
	}
	res.Duration = time.Since(start)
	res.Err = errors.Join(errs...)
	return res
}

func (c *Coordinator) runPhase(ctx context.Context, group []registration) []HandlerResult {
	results := make([]HandlerResult, len(group))
	var wg sync.WaitGroup
	for i, r := range group {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := r.fn(ctx)
			results[i] = HandlerResult{Name: r.name, Phase: r.phase, Duration: time.Since(start), Err: err}

			fields := map[string]interface{}{"handler": r.name, "phase": r.phase}
			if err != nil {
				fields["error"] = err.Error()
				c.logger.Warn("release_failed", fields)
				return
			}
			c.logger.Debug("released", fields)
		}()
	}
	wg.Wait()
	return results
}

// groupByPhase splits handlers sorted by phase into runs of equal phase.
func groupByPhase(handlers []registration) [][]registration {
	var groups [][]registration
	for i := 0; i < len(handlers); {
		j := i
		for j < len(handlers) && handlers[j].phase == handlers[i].phase {
			j++
		}
		groups = append(groups, handlers[i:j])
		i = j
	}
	return groups
}

// Signals returns a context cancelled on SIGINT or SIGTERM.
func Signals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
