package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/match"
	"github.com/bastiangx/termserve/pkg/project"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/bastiangx/termserve/pkg/relation"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Loader produces a fresh relation for the reload action.
type Loader func() (*relation.Relation, error)

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithLoader enables the reload action.
func WithLoader(load Loader) Option {
	return func(s *Server) { s.load = load }
}

// Server answers term and relation requests over msgpack.
type Server struct {
	mu     sync.RWMutex
	rel    *relation.Relation
	engine *match.Engine
	cfg    config.Config

	load Loader
	in   io.Reader
	out  io.Writer
	enc  *msgpack.Encoder
	w    *bufio.Writer
	wmu  sync.Mutex
	log  *log.Logger

	requestCount atomic.Int64
}

// NewServer creates a server over rel using the limits and index of cfg.
func NewServer(rel *relation.Relation, cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		in:  os.Stdin,
		out: os.Stdout,
		log: logger.New("server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine, err := newEngine(rel, cfg)
	if err != nil {
		return nil, err
	}
	s.rel, s.engine, s.cfg = rel, engine, *cfg
	s.w = bufio.NewWriter(s.out)
	s.enc = msgpack.NewEncoder(s.w)
	return s, nil
}

func newEngine(rel *relation.Relation, cfg *config.Config) (*match.Engine, error) {
	m, err := match.NewMatcher(cfg.Relation.Index, rel)
	if err != nil {
		return nil, err
	}
	return match.NewEngine(m, match.WithColonAttr(cfg.Query.ColonAttr)), nil
}

// ApplyConfig switches to new limits and query options without a restart.
// A changed index kind rebuilds the matcher over the current relation.
func (s *Server) ApplyConfig(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, err := newEngine(s.rel, cfg)
	if err != nil {
		return err
	}
	s.engine, s.cfg = engine, *cfg
	s.log.Debug("Applied config", "max_results", cfg.Server.MaxResults, "index", cfg.Relation.Index)
	return nil
}

// Reload replaces the relation with a freshly loaded one.
func (s *Server) Reload() error {
	if s.load == nil {
		return errors.New("no relation loader configured")
	}
	rel, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to reload relation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	engine, err := newEngine(rel, &s.cfg)
	if err != nil {
		return err
	}
	s.rel, s.engine = rel, engine
	s.log.Info("Reloaded relation", "triples", rel.Len(), "source", rel.Source())
	return nil
}

// Start serves requests until the input is closed or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	dec := msgpack.NewDecoder(bufio.NewReader(s.in))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}

		var req request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "invalid msgpack request", 400)
			continue
		}
		s.requestCount.Add(1)
		s.handleRequest(ctx, req)
	}
}

// RequestCount returns how many requests were decoded.
func (s *Server) RequestCount() int64 {
	return s.requestCount.Load()
}

func (s *Server) handleRequest(ctx context.Context, req request) {
	if req.Action != "" {
		s.handleRelation(req)
		return
	}
	s.handleTerm(ctx, req)
}

func (s *Server) handleTerm(ctx context.Context, req request) {
	s.mu.RLock()
	engine, limits := s.engine, s.cfg.Server
	s.mu.RUnlock()

	// prefix limits apply to the cursor term, earlier terms only narrow it
	term := query.Last(req.Search)
	if term == "" || len(term) < limits.MinPrefix {
		s.send(TermResponse{ID: req.ID, Results: []string{}})
		return
	}
	if len(term) > limits.MaxPrefix {
		s.sendError(req.ID, fmt.Sprintf("search term exceeds maximum length of %d", limits.MaxPrefix), 400)
		s.log.Debug("Search string is too long in request", "id", req.ID)
		return
	}
	if !utils.IsValidInput(req.Search) {
		s.sendError(req.ID, "search string contains invalid characters", 400)
		return
	}

	limit := req.Limit
	if limit < 1 || limit > limits.MaxResults {
		limit = limits.MaxResults
	}

	start := time.Now()
	matches, err := engine.Complete(ctx, req.Search)
	if err != nil {
		s.log.Errorf("Completing %q: %v", req.Search, err)
		s.sendError(req.ID, "internal server error", 500)
		return
	}
	res := project.Projector{Limit: limit}.Project(matches, "")

	results := make([]string, len(res.Items))
	for i, it := range res.Items {
		results[i] = it.Tagged()
	}
	s.send(TermResponse{
		ID:        req.ID,
		Results:   results,
		Count:     res.Count,
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleRelation(req request) {
	switch req.Action {
	case ActionGetInfo:
		s.send(s.relationInfo(req.ID))
	case ActionReload:
		if err := s.Reload(); err != nil {
			s.send(RelationResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		s.send(s.relationInfo(req.ID))
	default:
		s.send(RelationResponse{ID: req.ID, Status: "error", Error: fmt.Sprintf("unknown action: %s", req.Action)})
	}
}

func (s *Server) relationInfo(id string) RelationResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RelationResponse{
		ID:      id,
		Status:  "ok",
		Triples: s.rel.Len(),
		Classes: len(s.rel.Distinct(query.Class)),
		Source:  s.rel.Source(),
		Index:   s.cfg.Relation.Index,
	}
}

// send encodes one message and flushes it.
func (s *Server) send(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.w.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(TermError{ID: id, Error: message, Code: code})
}
