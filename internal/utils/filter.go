package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EqualFold performs case-insensitive rune equality check
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}

	// Try simple ASCII case folding first (faster)
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}

	// Use Unicode's more comprehensive case folding
	return strings.EqualFold(string(a), string(b))
}

// HasPrefixFold reports whether s starts with prefix, ignoring case.
// An empty prefix matches everything.
func HasPrefixFold(s, prefix string) bool {
	_, ok := matchFoldAt(s, prefix)
	return ok
}

// IndexFold returns the byte offset and byte length of the first
// case-insensitive occurrence of substr in s, or -1 and 0.
// The length is measured in s, which may differ from len(substr).
func IndexFold(s, substr string) (int, int) {
	if substr == "" {
		return 0, 0
	}
	for i := 0; i < len(s); {
		if n, ok := matchFoldAt(s[i:], substr); ok {
			return i, n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

// matchFoldAt compares the start of s with prefix rune by rune and returns
// how many bytes of s the prefix covered.
func matchFoldAt(s, prefix string) (int, bool) {
	i := 0
	for _, pr := range prefix {
		if i >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if !EqualFold(sr, pr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// FoldKey maps every rune of s to the smallest rune of its case folding
// orbit. Two strings are EqualFold rune by rune exactly when their keys are
// byte equal, so a byte prefix of a key is a fold-insensitive prefix.
func FoldKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	if r >= utf8.RuneSelf {
		orig := r
		for f := unicode.SimpleFold(orig); f != orig; f = unicode.SimpleFold(f) {
			if f < r {
				r = f
			}
		}
	}
	// orbits that reach ASCII land on its lower case, like plain ASCII
	if 'A' <= r && r <= 'Z' {
		r += 'a' - 'A'
	}
	return r
}

// IsValidInput checks if a search string should be processed for completions.
// Control characters never appear in the relation and are rejected.
func IsValidInput(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
