package query

import "strings"

// Sigil opens a sub-term and tells which field it names.
type Sigil byte

const (
	SigilClass    Sigil = '#'
	SigilAttr     Sigil = '@'
	SigilValue    Sigil = '='
	SigilWildcard Sigil = '*'

	// aliasAttr is accepted in place of SigilAttr, see NormalizeAlias.
	aliasAttr = ':'
)

// Sigils lists every sigil in classification order.
var Sigils = []Sigil{SigilClass, SigilAttr, SigilValue, SigilWildcard}

// State is the completeness of a single sub-term.
type State uint8

const (
	Empty State = iota
	Complete
	Incomplete
)

// States lists every State, used to enumerate the intent table.
var States = []State{Empty, Complete, Incomplete}

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	}
	return "unknown"
}

// SubTerm is what Classify found for one sigil.
type SubTerm struct {
	State  State
	String string
}

// IsDelimiter reports whether c closes a sub-term.
func IsDelimiter(c byte) bool {
	return c == '@' || c == '=' || c == '#' || c == '*'
}

// IsSigil reports whether c opens a sub-term.
func IsSigil(c byte) bool {
	return IsDelimiter(c)
}

// Classify looks for sigil in s.
//
// A sigil followed by at least one non-delimiter and then a delimiter is
// Complete; the leftmost such occurrence wins. A sigil followed only by
// non-delimiters up to the end of s is Incomplete, possibly with empty text.
// Anything else is Empty. Quote characters are removed from the text.
func Classify(sigil Sigil, s string) SubTerm {
	c := byte(sigil)
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			continue
		}
		j := i + 1
		for j < len(s) && !IsDelimiter(s[j]) {
			j++
		}
		if j > i+1 && j < len(s) {
			return SubTerm{State: Complete, String: dropQuotes(s[i+1 : j])}
		}
	}

	// only the last delimiter of s can open a run reaching the end
	if k := lastDelimiter(s); k >= 0 && s[k] == c {
		return SubTerm{State: Incomplete, String: dropQuotes(s[k+1:])}
	}
	return SubTerm{State: Empty}
}

// ClassifyTail returns the trailing run of non-delimiter characters of s,
// whichever sigil opened it. It is always Incomplete.
func ClassifyTail(s string) SubTerm {
	return SubTerm{State: Incomplete, String: dropQuotes(s[lastDelimiter(s)+1:])}
}

// ImplyWildcard prefixes s with the wildcard sigil when it does not already
// start with a sigil.
func ImplyWildcard(s string) string {
	if len(s) > 0 && IsSigil(s[0]) {
		return s
	}
	return string(SigilWildcard) + s
}

// NormalizeAlias rewrites the attribute alias ':' into '@'. With everywhere
// unset only a term-leading ':' is rewritten, so values such as MAC
// addresses keep their colons.
func NormalizeAlias(term string, everywhere bool) string {
	if everywhere {
		return strings.ReplaceAll(term, string(aliasAttr), string(SigilAttr))
	}
	if strings.HasPrefix(term, string(aliasAttr)) {
		return string(SigilAttr) + term[1:]
	}
	return term
}

// TrimTail removes the trailing run of non-delimiter characters from term,
// leaving whatever sigil opened it.
func TrimTail(term string) string {
	return term[:lastDelimiter(term)+1]
}

func lastDelimiter(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if IsDelimiter(s[i]) {
			return i
		}
	}
	return -1
}

func dropQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
