package match

import (
	"context"
	"fmt"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/charmbracelet/log"
)

// Engine turns raw input into tagged completions using a Matcher.
// It is safe for concurrent use as long as the Matcher is.
type Engine struct {
	matcher   Matcher
	colonAttr bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithColonAttr makes every ':' in a term an attribute sigil instead of only
// a leading one.
func WithColonAttr(enabled bool) Option {
	return func(e *Engine) {
		e.colonAttr = enabled
	}
}

// NewEngine creates an Engine backed by m.
func NewEngine(m Matcher, opts ...Option) *Engine {
	e := &Engine{matcher: m}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Intent classifies the cursor term of raw.
func (e *Engine) Intent(raw string) query.Intent {
	term := query.NormalizeAlias(query.Last(raw), e.colonAttr)
	return query.BuildSearch(term)
}

// Search runs every term and returns the concatenated matches with repeats
// removed, first occurrence kept. No match gives an empty slice.
func (e *Engine) Search(terms []query.Term) []string {
	var matches []string
	for _, t := range terms {
		switch t.Completeness {
		case 1, 2:
			matches = append(matches, e.matcher.MatchTwoFixed(t.Type1, t.Type2, t.IncompleteType, t.String1, t.String2, t.IncompleteStr)...)
		case 0:
			matches = append(matches, e.matcher.MatchOneFree(t.IncompleteType, t.IncompleteStr)...)
		default:
			panic(fmt.Sprintf("match: term completeness %d out of range", t.Completeness))
		}
	}
	return utils.Unique(matches)
}

// Complete returns the tagged completions for the cursor term of raw.
func (e *Engine) Complete(ctx context.Context, raw string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	intent := e.Intent(raw)
	matches := e.Search(intent.Terms)
	log.Debugf("Completed %q: %d terms, %d matches", raw, len(intent.Terms), len(matches))
	return matches, nil
}
