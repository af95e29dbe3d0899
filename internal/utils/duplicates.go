package utils

// SeenFilter keeps the first occurrence of each string and drops repeats.
// It is not safe for concurrent use.
type SeenFilter struct {
	seen map[string]struct{}
}

// NewSeenFilter creates a filter sized for about n entries.
func NewSeenFilter(n int) *SeenFilter {
	return &SeenFilter{seen: make(map[string]struct{}, n)}
}

// ShouldInclude reports whether s is seen for the first time, and marks it.
func (f *SeenFilter) ShouldInclude(s string) bool {
	if _, dup := f.seen[s]; dup {
		return false
	}
	f.seen[s] = struct{}{}
	return true
}

// Unique returns items with repeats removed, first-seen order kept.
func Unique(items []string) []string {
	f := NewSeenFilter(len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if f.ShouldInclude(s) {
			out = append(out, s)
		}
	}
	return out
}
