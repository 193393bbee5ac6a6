package footnote

import (
	"errors"
	"slices"
	"sync"
)

// ErrPassEnded is returned by Cite after the pass has been extracted.
var ErrPassEnded = errors.New("footnote: pass has ended")

// Table maps reference keys to the 0-based ordinal of their first citation.
type Table map[string]int

// Len returns the number of distinct cited keys.
func (t Table) Len() int { return len(t) }

// Ordinal returns the ordinal of key.
func (t Table) Ordinal(key string) (int, bool) {
	n, ok := t[key]
	return n, ok
}

// Keys returns cited keys in ordinal order.
func (t Table) Keys() []string {
	keys := make([]string, len(t))
	for k, n := range t {
		keys[n] = k
	}
	return keys
}

// Pass owns a Table for the duration of one render pass.
type Pass struct {
	mu    sync.Mutex
	table Table
	ended bool
}

// NewPass starts a pass with an empty table.
func NewPass() *Pass {
	return &Pass{table: make(Table)}
}

// Cite records key and returns its ordinal. A key cited again keeps its
// first ordinal.
func (p *Pass) Cite(key string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return 0, ErrPassEnded
	}
	if n, ok := p.table[key]; ok {
		return n, nil
	}
	n := len(p.table)
	p.table[key] = n
	return n, nil
}

// End closes the pass and transfers its table to the caller. Later calls
// return nil.
func (p *Pass) End() Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return nil
	}
	p.ended = true
	t := p.table
	p.table = nil
	return t
}

// Run calls fn with a fresh pass and returns the extracted table. The pass
// is ended even when fn fails or panics.
func Run(fn func(*Pass) error) (table Table, err error) {
	p := NewPass()
	defer func() {
		t := p.End()
		if err == nil {
			table = t
		}
	}()
	return nil, fn(p)
}

// Filter keeps the entries whose key is in table, ordered by ordinal. A nil
// table keeps every entry in its given order.
func Filter[E any](entries []E, key func(E) string, table Table) []E {
	if table == nil {
		return slices.Clone(entries)
	}
	out := make([]E, 0, len(table))
	for _, e := range entries {
		if _, ok := table[key(e)]; ok {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b E) int {
		return table[key(a)] - table[key(b)]
	})
	return out
}
