/*
Package query implements the sigil grammar used by the term completer.

A query is a list of whitespace separated terms. Each term is built from sub-terms
opened by a sigil character:

	#<class>  @<attribute>  =<value>  *<anything>

A term without a leading sigil is read as if it started with '*'. Double quotes
group text containing spaces into one term:

	#fvTenant@name="common tenant"

The package is split in three layers. Split tokenizes the raw field value,
Classify inspects a single term per sigil, and BuildSearch turns the
classification into the Terms the match engine understands.

	tail := query.Last(raw)
	intent := query.BuildSearch(tail)
	for _, t := range intent.Terms {
		...
	}

Nothing in this package returns an error. Malformed input degrades into
fewer or empty completions instead.
*/
package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks raw into terms on unquoted whitespace while keeping quoted
// spans together. The last term is always emitted, even when empty, so the
// cursor term can be classified while it is being typed. Trailing whitespace
// belongs to the last term and is trimmed unless a quote is still open.
func Split(raw string) []string {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := len(strings.TrimRightFunc(s, unicode.IsSpace))
	words := make([]string, 0, 4)
	outsideQuote := true
	start := 0

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		// last rune is never a delimiter; it belongs to the final term
		if i+size >= len(s) {
			break
		}
		switch {
		case unicode.IsSpace(r) && outsideQuote && i < end:
			if i > start {
				words = append(words, stripQuotes(s[start:i]))
			}
			start = i + size
		case r == '"':
			outsideQuote = !outsideQuote
		}
		i += size
	}

	last := s[start:]
	if outsideQuote {
		last = strings.TrimSpace(last)
	}
	words = append(words, stripQuotes(last))
	return words
}

// Join is the inverse of Split for selection rewrites: terms holding
// whitespace are quoted again so a later Split yields the same terms.
func Join(words []string) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if strings.IndexFunc(w, unicode.IsSpace) >= 0 && !strings.ContainsRune(w, '"') {
			sb.WriteByte('"')
			sb.WriteString(w)
			sb.WriteByte('"')
			continue
		}
		sb.WriteString(w)
	}
	return sb.String()
}

// Last returns the cursor term of raw.
func Last(raw string) string {
	words := Split(raw)
	return words[len(words)-1]
}

// LastStart returns the byte offset in raw where the cursor term begins.
func LastStart(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	offset := len(raw) - len(s)
	end := len(strings.TrimRightFunc(s, unicode.IsSpace))
	outsideQuote := true
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if i+size >= len(s) {
			break
		}
		switch {
		case unicode.IsSpace(r) && outsideQuote && i < end:
			start = i + size
		case r == '"':
			outsideQuote = !outsideQuote
		}
		i += size
	}
	return offset + start
}

// NormalizeSpaces trims s and collapses every whitespace run into a single
// space, which is how the input field value is read before splitting.
func NormalizeSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// stripQuotes drops one leading and one trailing double quote.
func stripQuotes(w string) string {
	w = strings.TrimPrefix(w, `"`)
	return strings.TrimSuffix(w, `"`)
}
