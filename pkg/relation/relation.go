// Package relation holds the reference (class, attribute, value) relation the
// completer matches against, and loads it from the supported sources.
package relation

import (
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/query"
)

// Triple is one (class, attribute, value) tuple, indexed by query.Field.
type Triple [3]string

// NewTriple builds a Triple in field order.
func NewTriple(class, attr, value string) Triple {
	return Triple{class, attr, value}
}

// Get returns the text stored for field f.
func (t Triple) Get(f query.Field) string {
	return t[f]
}

// Relation is an immutable, de-duplicated and ordered set of triples.
// It is built once per session and shared read-only by every lookup.
type Relation struct {
	triples []Triple
	source  string
}

// New builds a Relation from triples, dropping repeats while keeping the
// first-seen order.
func New(triples []Triple) *Relation {
	seen := make(map[Triple]struct{}, len(triples))
	kept := make([]Triple, 0, len(triples))
	for _, t := range triples {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		kept = append(kept, t)
	}
	return &Relation{triples: kept}
}

// Empty returns a relation with no triples.
func Empty() *Relation {
	return &Relation{}
}

// Len returns the number of triples.
func (r *Relation) Len() int {
	if r == nil {
		return 0
	}
	return len(r.triples)
}

// At returns the i-th triple.
func (r *Relation) At(i int) Triple {
	return r.triples[i]
}

// Each calls fn for every triple in order until fn returns false.
func (r *Relation) Each(fn func(i int, t Triple) bool) {
	if r == nil {
		return
	}
	for i, t := range r.triples {
		if !fn(i, t) {
			return
		}
	}
}

// Triples returns a copy of the triples.
func (r *Relation) Triples() []Triple {
	out := make([]Triple, r.Len())
	if r != nil {
		copy(out, r.triples)
	}
	return out
}

// Source is the path the relation was loaded from, if any.
func (r *Relation) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Distinct returns the distinct texts of field f in first-seen order.
func (r *Relation) Distinct(f query.Field) []string {
	seen := utils.NewSeenFilter(0)
	var out []string
	r.Each(func(_ int, t Triple) bool {
		if v := t.Get(f); seen.ShouldInclude(v) {
			out = append(out, v)
		}
		return true
	})
	return out
}
