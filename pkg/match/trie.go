package match

import (
	"sort"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/query"
	"github.com/bastiangx/termserve/pkg/relation"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Trie is an indexed Matcher. Each field has a patricia trie keyed by the
// case folded text and an exact posting list; both hold tuple indices in
// ascending order. Results equal those of Scan over the same relation.
type Trie struct {
	rel   *relation.Relation
	tries [3]*patricia.Trie
	exact [3]map[string][]int
	// tuples whose field text is empty; patricia keys cannot be empty
	blank [3][]int
}

// NewTrie indexes rel.
func NewTrie(rel *relation.Relation) *Trie {
	t := &Trie{rel: rel}
	for _, f := range query.Fields {
		t.tries[f] = patricia.NewTrie()
		t.exact[f] = make(map[string][]int)
	}

	rel.Each(func(i int, tuple relation.Triple) bool {
		for _, f := range query.Fields {
			text := tuple.Get(f)
			t.exact[f][text] = append(t.exact[f][text], i)
			if text == "" {
				t.blank[f] = append(t.blank[f], i)
				continue
			}
			key := patricia.Prefix(utils.FoldKey(text))
			if item := t.tries[f].Get(key); item != nil {
				t.tries[f].Set(key, append(item.([]int), i))
			} else {
				t.tries[f].Insert(key, []int{i})
			}
		}
		return true
	})
	log.Debugf("Indexed %d tuples", rel.Len())
	return t
}

func (t *Trie) MatchTwoFixed(type1, type2, incomplete query.Field, value1, value2, prefix string) []string {
	// walk the shorter posting list and check the rest on the tuple
	postings := t.exact[type1][value1]
	if other := t.exact[type2][value2]; len(other) < len(postings) {
		postings = other
	}

	var out []string
	for _, i := range postings {
		tuple := t.rel.At(i)
		if tuple.Get(type1) != value1 || tuple.Get(type2) != value2 {
			continue
		}
		if text := tuple.Get(incomplete); utils.HasPrefixFold(text, prefix) {
			out = append(out, Tag(incomplete, text))
		}
	}
	return out
}

func (t *Trie) MatchOneFree(incomplete query.Field, prefix string) []string {
	var out []string
	for _, i := range t.candidates(incomplete, prefix) {
		out = append(out, Tag(incomplete, t.rel.At(i).Get(incomplete)))
	}
	return out
}

// candidates returns the ascending indices of tuples whose field f starts
// with prefix, ignoring case.
func (t *Trie) candidates(f query.Field, prefix string) []int {
	if prefix == "" {
		all := make([]int, t.rel.Len())
		for i := range all {
			all[i] = i
		}
		return all
	}

	var idx []int
	err := t.tries[f].VisitSubtree(patricia.Prefix(utils.FoldKey(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		idx = append(idx, item.([]int)...)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	sort.Ints(idx)
	return idx
}
