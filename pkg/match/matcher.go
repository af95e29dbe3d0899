// Package match runs query Terms against a reference relation and returns
// tagged completions: the field code followed by the field text, e.g. "vcommon".
package match

import (
	"errors"
	"fmt"

	"github.com/bastiangx/termserve/pkg/query"
	"github.com/bastiangx/termserve/pkg/relation"
)

// ErrUnknownMatcher is returned by NewMatcher for an unsupported kind.
var ErrUnknownMatcher = errors.New("unknown matcher")

// Matcher kinds accepted by NewMatcher.
const (
	KindScan = "scan"
	KindTrie = "trie"
)

// Matcher holds the two matching primitives.
//
// Fixed fields compare exactly, the incomplete field matches prefix ignoring
// case. Results come in relation order and may repeat when several tuples
// share the completed text.
type Matcher interface {
	MatchTwoFixed(type1, type2, incomplete query.Field, value1, value2, prefix string) []string
	MatchOneFree(incomplete query.Field, prefix string) []string
}

// NewMatcher builds the matcher named by kind over rel.
func NewMatcher(kind string, rel *relation.Relation) (Matcher, error) {
	switch kind {
	case KindScan, "":
		return NewScan(rel), nil
	case KindTrie:
		return NewTrie(rel), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, kind)
}

// Tag prefixes text with the code of f.
func Tag(f query.Field, text string) string {
	return string(f.Code()) + text
}

// Untag splits a tagged match into its field and text.
func Untag(match string) (query.Field, string, bool) {
	if match == "" {
		return 0, "", false
	}
	f, ok := query.FieldForCode(match[0])
	return f, match[1:], ok
}
