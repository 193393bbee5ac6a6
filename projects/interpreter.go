package projects

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/telemetry"
)

// Auth carries the identity used for one import.
type Auth struct {
	// Token authenticates against the source. Empty means anonymous.
	Token string

	// Viewer is the person's account on the source. It decides the role
	// of named projects and whose contribution stats are collected.
	Viewer string
}

// Source lists projects from an external host.
type Source interface {
	// ListOwned returns the repositories owned by the viewer (or the
	// authenticated account when no viewer is known), with role owner.
	ListOwned(ctx context.Context, ignoreForks bool, auth Auth) ([]Project, error)

	// ListByNames returns the named owner/repo projects in request order.
	ListByNames(ctx context.Context, names []string, auth Auth) ([]Project, error)
}

// TokenProvider supplies a token for a source when an import carries none.
type TokenProvider interface {
	Token(source string) string
}

// Interpreter runs a directive list.
type Interpreter struct {
	Sources map[string]Source
	Tokens  TokenProvider
	Logger  *logging.Logger
}

// Result is the ordered project list and the settings that produced it.
type Result struct {
	Projects []Project
	Mode     ImportMode
	Policy   SortPolicy
}

// Directives returns a directive list that reproduces r without any
// import: the ordered projects as manual records followed by a manual
// sort.
func (r *Result) Directives() Directives {
	out := make(Directives, 0, len(r.Projects)+1)
	for _, p := range r.Projects {
		out = append(out, Manual{Project: p.clone()})
	}
	return append(out, SetSortOrder{Policy: PolicyManual})
}

// Run consumes directives in order. Imports run one at a time; the first
// failing import aborts the run. viewer is the person's account name on
// the sources and may be empty.
func (in *Interpreter) Run(ctx context.Context, directives Directives, viewer string) (*Result, error) {
	logger := in.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tracer := telemetry.GetTracer()

	store := NewStore()
	mode := ModeCombine
	policy := PolicyNone
	var manual []Manual

	for i, d := range directives {
		switch d := d.(type) {
		case Import:
			src, ok := in.Sources[d.From]
			if !ok {
				return nil, errors.Newf(errors.ErrCodeBadDirective, "projects[%d]: unknown source %q", i, d.From)
			}
			auth := Auth{Token: d.Token, Viewer: viewer}
			if auth.Token == "" && in.Tokens != nil {
				auth.Token = in.Tokens.Token(d.From)
			}

			start := time.Now()
			logger.ImportStart(d.From, i)
			sctx, span := tracer.StartImportSpan(ctx, d.From)
			var (
				fetched []Project
				err     error
			)
			if d.Repos == nil {
				fetched, err = src.ListOwned(sctx, d.IgnoreForks, auth)
			} else {
				fetched, err = src.ListByNames(sctx, d.Repos, auth)
			}
			tracer.EndImportSpan(span, telemetry.ImportSpanOptions{
				Source:   d.From,
				Repos:    d.Repos,
				Projects: len(fetched),
			}, err)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("projects[%d]: import from %s", i, d.From))
			}
			for _, p := range fetched {
				store.Put(p)
			}
			logger.ImportComplete(d.From, i, len(fetched), time.Since(start))

		case SetSortOrder:
			policy = d.Policy
		case SetImportMode:
			mode = d.Mode
		case Manual:
			manual = append(manual, d)
		default:
			return nil, errors.Newf(errors.ErrCodeInternal, "projects[%d]: unhandled directive %T", i, d)
		}
	}
	if policy == PolicyNone && mode == ModeWhitelist {
		policy = PolicyManual
	}

	lastIndex := make(map[string]int, len(manual))
	for i, m := range manual {
		p := m.Project.clone()
		SortLanguages(p.Languages)
		if store.Merge(p) {
			logger.ProjectMerged(p.Name)
		}
		lastIndex[p.Name] = i
	}

	var out []Project
	if mode == ModeWhitelist {
		seen := make(map[string]bool, len(manual))
		for _, m := range manual {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			if p, ok := store.Get(m.Name); ok {
				out = append(out, p)
			}
		}
	} else {
		out = store.All()
	}

	// Whitelist output is already in manual order.
	if !(policy == PolicyManual && mode == ModeWhitelist) {
		Sort(out, policy, lastIndex)
	}

	if logger.Enabled(logging.LevelDebug) {
		if dump, err := yaml.Marshal(out); err == nil {
			logger.Debug("sorted projects", map[string]interface{}{"yaml": string(dump)})
		}
	}
	return &Result{Projects: out, Mode: mode, Policy: policy}, nil
}
