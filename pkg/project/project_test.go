package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(res Result) []string {
	out := make([]string, len(res.Items))
	for i, it := range res.Items {
		out[i] = it.Tagged()
	}
	return out
}

func TestProjectSorts(t *testing.T) {
	testCases := []struct {
		matches     []string
		expected    []string
		description string
	}{
		{[]string{"aprovider", "aconsumer"}, []string{"aconsumer", "aprovider"}, "attribute names"},
		{[]string{"vbeta", "vAlpha", "vgamma"}, []string{"vAlpha", "vbeta", "vgamma"}, "case insensitive"},
		{[]string{"vfoo", "cfoo", "vFoo"}, []string{"vFoo", "cfoo", "vfoo"}, "ties broken by text then tag"},
		{[]string{"v", "", "vb"}, []string{"v", "vb"}, "empty text kept, empty match dropped"},
		{nil, []string{}, "no matches"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			res := Projector{}.Project(tc.matches, "")
			assert.Equal(t, tc.expected, texts(res))
		})
	}
}

func TestProjectHighlight(t *testing.T) {
	res := Projector{}.Project([]string{"vFooBar", "vbarfoo", "vnone"}, "foo")
	require.Len(t, res.Items, 3)

	byText := map[string]Item{}
	for _, it := range res.Items {
		byText[it.Text] = it
	}
	assert.Equal(t, 0, byText["FooBar"].HighlightStart)
	assert.Equal(t, 3, byText["FooBar"].HighlightLen)
	assert.Equal(t, 3, byText["barfoo"].HighlightStart)
	assert.Equal(t, 0, byText["none"].HighlightLen)

	before, match, after := byText["barfoo"].Highlight()
	assert.Equal(t, "bar", before)
	assert.Equal(t, "foo", match)
	assert.Equal(t, "", after)
}

func TestProjectLimit(t *testing.T) {
	res := Projector{Limit: 2}.Project([]string{"cc", "cb", "ca"}, "c")
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []string{"ca", "cb"}, texts(res))
	assert.Equal(t, "c", res.SearchString)
}

func TestInsertion(t *testing.T) {
	assert.Equal(t, "common", Item{Tag: 'v', Text: "common"}.Insertion())
	assert.Equal(t, `"common tenant"`, Item{Tag: 'v', Text: "common tenant"}.Insertion())
}
