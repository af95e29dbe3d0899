package server

import (
	"sync"

	"github.com/bastiangx/termserve/pkg/project"
)

type recorder struct {
	mu       sync.Mutex
	results  []project.Result
	statuses []string
}

func (r *recorder) Render(res project.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, msg)
}

func (r *recorder) Hide() {}
