package match

import (
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/bastiangx/termserve/pkg/relation"
)

// Scan matches by walking every tuple of the relation.
type Scan struct {
	rel *relation.Relation
}

// NewScan creates a linear matcher over rel.
func NewScan(rel *relation.Relation) *Scan {
	return &Scan{rel: rel}
}

func (s *Scan) MatchTwoFixed(type1, type2, incomplete query.Field, value1, value2, prefix string) []string {
	var out []string
	s.rel.Each(func(_ int, t relation.Triple) bool {
		if t.Get(type1) != value1 || t.Get(type2) != value2 {
			return true
		}
		if text := t.Get(incomplete); utils.HasPrefixFold(text, prefix) {
			out = append(out, Tag(incomplete, text))
		}
		return true
	})
	return out
}

func (s *Scan) MatchOneFree(incomplete query.Field, prefix string) []string {
	var out []string
	s.rel.Each(func(_ int, t relation.Triple) bool {
		if text := t.Get(incomplete); utils.HasPrefixFold(text, prefix) {
			out = append(out, Tag(incomplete, text))
		}
		return true
	})
	return out
}
