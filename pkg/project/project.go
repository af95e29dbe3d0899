// Package project turns tagged matches into the ordered, highlighted list a
// renderer shows.
package project

import (
	"sort"
	"strings"

	"github.com/bastiangx/termserve/internal/utils"
)

// Item is one row of the dropdown.
type Item struct {
	Tag  byte   // 'c', 'a' or 'v'
	Text string // match text without the tag
	// HighlightStart and HighlightLen are byte offsets into Text.
	HighlightStart int
	HighlightLen   int
}

// Tagged returns the match as it came from the engine.
func (it Item) Tagged() string {
	return string(it.Tag) + it.Text
}

// Insertion is the text written into the input on selection. Text holding a
// space is quoted so it stays one term.
func (it Item) Insertion() string {
	if strings.ContainsRune(it.Text, ' ') {
		return `"` + it.Text + `"`
	}
	return it.Text
}

// Highlight splits Text around the highlight span.
func (it Item) Highlight() (before, match, after string) {
	end := it.HighlightStart + it.HighlightLen
	return it.Text[:it.HighlightStart], it.Text[it.HighlightStart:end], it.Text[end:]
}

// Result is what the renderer receives.
type Result struct {
	Items []Item
	// Count is the number of matches before the limit was applied.
	Count        int
	SearchString string
}

// Projector sorts and highlights matches. A Limit of zero or less keeps all.
type Projector struct {
	Limit int
}

// Project builds the Result for matches. Empty entries are skipped.
func (p Projector) Project(matches []string, searchString string) Result {
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		if m == "" {
			continue
		}
		item := Item{Tag: m[0], Text: m[1:]}
		if start, n := utils.IndexFold(item.Text, searchString); start >= 0 {
			item.HighlightStart, item.HighlightLen = start, n
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})

	res := Result{Count: len(items), SearchString: searchString}
	if p.Limit > 0 && len(items) > p.Limit {
		items = items[:p.Limit]
	}
	res.Items = items
	return res
}

// less orders by folded text, then raw text, then tag.
func less(a, b Item) bool {
	ka, kb := strings.ToLower(a.Text), strings.ToLower(b.Text)
	if ka != kb {
		return ka < kb
	}
	if a.Text != b.Text {
		return a.Text < b.Text
	}
	return a.Tag < b.Tag
}
