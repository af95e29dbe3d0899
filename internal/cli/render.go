package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/bastiangx/termserve/pkg/project"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/charmbracelet/lipgloss"
)

// Renderer prints session results as a numbered dropdown.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer

	highlight lipgloss.Style
	tag       lipgloss.Style
	status    lipgloss.Style
}

// NewRenderer writes to out, styled for whatever out supports.
func NewRenderer(out io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(out)
	return &Renderer{
		out: out,
		highlight: lr.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#d7827e", Dark: "#ea9a97"}),
		tag: lr.NewStyle().Italic(true).Width(6).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"}),
		status: lr.NewStyle().Faint(true),
	}
}

func (r *Renderer) Render(res project.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shown := len(res.Items)
	if shown < res.Count {
		fmt.Fprintf(r.out, "Found %d matches, showing %d:\n", res.Count, shown)
	} else {
		fmt.Fprintf(r.out, "Found %d matches:\n", res.Count)
	}
	for i, it := range res.Items {
		before, hl, after := it.Highlight()
		fmt.Fprintf(r.out, "%2d. %s %s%s%s\n", i+1, r.tag.Render(tagHint(it.Tag)), before, r.highlight.Render(hl), after)
	}
}

func (r *Renderer) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.status.Render(msg))
}

// Hide is a no-op; printed rows cannot be taken back.
func (r *Renderer) Hide() {}

func tagHint(tag byte) string {
	if f, ok := query.FieldForCode(tag); ok {
		return f.String()
	}
	return string(tag)
}
