// Package cli is an interactive shell over a completion session, mainly for
// testing the query grammar against a relation.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/termserve/pkg/session"
	"github.com/charmbracelet/log"
)

const help = `Each line replaces the query buffer and shows its completions.
Lines like :name are queries, ':' being the attribute alias.
  :N   select match N
  :r   accept the first match
  :go  submit the buffer
  :q   quit`

// Options tune the shell.
type Options struct {
	Limit     int
	Async     bool
	ColonAttr bool
}

// InputHandler reads query buffers line by line and drives a session.
type InputHandler struct {
	session *session.Session
	in      io.Reader
	out     io.Writer
	buffer  string
}

// NewInputHandler builds a shell completing through lookup.
func NewInputHandler(lookup session.Lookup, in io.Reader, out io.Writer, opts Options) *InputHandler {
	h := &InputHandler{in: in, out: out}
	h.session = session.New(lookup, NewRenderer(out),
		session.WithLimit(opts.Limit),
		session.WithAsync(opts.Async),
		session.WithColonAttr(opts.ColonAttr),
		session.WithSubmit(h.submit),
	)
	return h
}

// Start runs the loop until :q or the end of input.
func (h *InputHandler) Start(ctx context.Context) error {
	defer h.session.Close()
	fmt.Fprintln(h.out, "TermServe CLI")
	fmt.Fprintln(h.out, help)

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		if quit := h.handleLine(ctx, strings.TrimRight(scanner.Text(), "\r")); quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
	}
}

// Buffer returns the current query buffer.
func (h *InputHandler) Buffer() string {
	return h.buffer
}

func (h *InputHandler) handleLine(ctx context.Context, line string) (quit bool) {
	switch {
	case line == ":q":
		return true
	case line == ":go":
		h.session.HandleKey(ctx, h.buffer, session.KeyEnter)
		h.buffer = ""
	case line == ":r":
		h.selectWith(func() (string, error) {
			return h.session.HandleKey(ctx, h.buffer, session.KeyRight)
		})
	case isSelectCommand(line):
		n, _ := strconv.Atoi(line[1:])
		h.selectWith(func() (string, error) {
			return h.session.Select(h.buffer, n-1)
		})
	default:
		h.buffer = line
		log.Debug("Processing request for", "buffer", line)
		h.session.HandleKey(ctx, line, session.KeyEdit)
	}
	return false
}

// isSelectCommand reports whether line is ':' followed by digits. Any other
// line starting with ':' is a query using the attribute alias.
func isSelectCommand(line string) bool {
	if len(line) < 2 || line[0] != ':' {
		return false
	}
	for _, c := range line[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (h *InputHandler) selectWith(sel func() (string, error)) {
	buf, err := sel()
	if errors.Is(err, session.ErrNoMatches) {
		fmt.Fprintln(h.out, "Nothing to select")
		return
	}
	h.buffer = buf
	fmt.Fprintf(h.out, "buffer: %s\n", h.buffer)
}

func (h *InputHandler) submit(raw string) {
	fmt.Fprintf(h.out, "Submitted: %s\n", strings.TrimSpace(raw))
}
