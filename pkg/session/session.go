// Package session drives one query input field: it classifies the cursor
// term on every edit, asks a Lookup for completions and hands the projected
// result to a Renderer.
//
// Lookups may run asynchronously. Every lookup gets a sequence number and
// only the response to the most recently issued one is rendered; older
// responses are dropped when they arrive.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/pkg/project"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/charmbracelet/log"
)

// ErrNoMatches is returned when a selection is made with nothing displayed.
var ErrNoMatches = errors.New("no matches")

// Status messages sent to the renderer.
const (
	StatusNoResults = "No results"
	StatusSearching = "Searching..."
)

// Lookup returns tagged completions for the cursor term of raw.
type Lookup interface {
	Complete(ctx context.Context, raw string) ([]string, error)
}

// Renderer displays results. Its methods are called with the session lock
// held and must not call back into the Session.
type Renderer interface {
	Render(res project.Result)
	Status(msg string)
	Hide()
}

// Option configures a Session.
type Option func(*Session)

// WithAsync runs lookups in their own goroutine.
func WithAsync(async bool) Option {
	return func(s *Session) { s.async = async }
}

// WithLimit caps the number of rendered items.
func WithLimit(limit int) Option {
	return func(s *Session) { s.projector.Limit = limit }
}

// WithColonAttr treats every ':' as an attribute sigil.
func WithColonAttr(enabled bool) Option {
	return func(s *Session) { s.colonAttr = enabled }
}

// WithSubmit sets the callback invoked with the raw input on submission.
func WithSubmit(fn func(raw string)) Option {
	return func(s *Session) { s.onSubmit = fn }
}

// Session is the per-field state. It is safe for concurrent use.
type Session struct {
	lookup    Lookup
	renderer  Renderer
	projector project.Projector
	async     bool
	colonAttr bool
	onSubmit  func(string)
	log       *log.Logger

	mu       sync.Mutex
	state    State
	latest   uint64
	lastTerm string
	result   project.Result

	wg sync.WaitGroup
}

// New creates a Session.
func New(lookup Lookup, renderer Renderer, opts ...Option) *Session {
	s := &Session{
		lookup:   lookup,
		renderer: renderer,
		log:      logger.New("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the last rendered result.
func (s *Session) Result() project.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Latest returns the sequence number of the most recently issued lookup.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Update re-evaluates the input after an edit.
func (s *Session) Update(ctx context.Context, raw string) {
	raw = query.NormalizeSpaces(raw)
	term := query.NormalizeAlias(query.Last(raw), s.colonAttr)

	s.mu.Lock()
	if term == "" {
		s.reset()
		s.renderer.Status(StatusNoResults)
		s.renderer.Hide()
		s.mu.Unlock()
		return
	}
	if term == s.lastTerm {
		s.mu.Unlock()
		return
	}
	s.lastTerm = term
	s.latest++
	seq := s.latest
	s.state = Classifying
	s.mu.Unlock()

	searchString := query.BuildSearch(term).SearchString
	s.setState(seq, Matching)

	if !s.async {
		s.run(ctx, seq, raw, searchString)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, seq, raw, searchString)
	}()
}

func (s *Session) run(ctx context.Context, seq uint64, raw, searchString string) {
	matches, err := s.lookup.Complete(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest {
		s.log.Debugf("Dropping stale response %d, latest is %d", seq, s.latest)
		return
	}
	if err != nil {
		s.log.Warnf("Lookup failed for %q: %v", raw, err)
	}
	if err != nil || len(matches) == 0 {
		s.result = project.Result{SearchString: searchString}
		s.state = Idle
		s.renderer.Status(StatusNoResults)
		s.renderer.Hide()
		return
	}

	s.result = s.projector.Project(matches, searchString)
	s.state = Displaying
	s.renderer.Render(s.result)
}

// setState moves to st unless a newer lookup was issued meanwhile.
func (s *Session) setState(seq uint64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.latest {
		s.state = st
	}
}

// reset returns to Idle and invalidates in-flight lookups. Callers hold mu.
func (s *Session) reset() {
	s.latest++
	s.lastTerm = ""
	s.result = project.Result{}
	s.state = Idle
}

// HandleKey applies a keystroke and returns the possibly rewritten buffer.
func (s *Session) HandleKey(ctx context.Context, raw string, key Key) (string, error) {
	switch key {
	case KeyEdit:
		s.Update(ctx, raw)
	case KeyEnter:
		s.Submit(raw)
	case KeyRight:
		return s.Select(raw, 0)
	}
	return raw, nil
}

// Select replaces the text being typed in the cursor term with match i and
// appends a space so the next term can start.
func (s *Session) Select(raw string, i int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Displaying || len(s.result.Items) == 0 {
		return raw, ErrNoMatches
	}
	if i < 0 || i >= len(s.result.Items) {
		return raw, fmt.Errorf("%w: index %d out of %d", ErrNoMatches, i, len(s.result.Items))
	}

	out := Rewrite(raw, s.result.Items[i], s.colonAttr)
	s.reset()
	s.renderer.Hide()
	return out, nil
}

// Rewrite replaces the trailing non-sigil run of the cursor term of raw with
// the insertion text of item and appends a space.
func Rewrite(raw string, item project.Item, colonAttr bool) string {
	raw = query.NormalizeSpaces(raw)
	start := query.LastStart(raw)
	term := query.NormalizeAlias(raw[start:], colonAttr)
	return raw[:start] + query.TrimTail(term) + item.Insertion() + " "
}

// Submit hands raw to the submission callback.
func (s *Session) Submit(raw string) {
	s.mu.Lock()
	s.reset()
	s.state = Submitting
	s.renderer.Hide()
	s.renderer.Status(StatusSearching)
	s.mu.Unlock()

	if s.onSubmit != nil {
		s.onSubmit(raw)
	}

	s.mu.Lock()
	if s.state == Submitting {
		s.state = Idle
	}
	s.mu.Unlock()
}

// Close waits for in-flight lookups.
func (s *Session) Close() {
	s.wg.Wait()
}
