package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		sigil       Sigil
		input       string
		expected    SubTerm
		description string
	}{
		{SigilClass, "#tenant1@", SubTerm{Complete, "tenant1"}, "closed by another sigil"},
		{SigilAttr, "#tenant1@", SubTerm{Incomplete, ""}, "open sigil at end with no text"},
		{SigilAttr, "#tenant1@na", SubTerm{Incomplete, "na"}, "open sigil with partial text"},
		{SigilValue, "#tenant1@na", SubTerm{Empty, ""}, "sigil absent"},
		{SigilClass, "#@", SubTerm{Empty, ""}, "no text between sigils is not complete"},
		{SigilClass, "##x", SubTerm{Incomplete, "x"}, "second occurrence is the open one"},
		{SigilClass, "#a#b", SubTerm{Complete, "a"}, "leftmost closed occurrence wins"},
		{SigilValue, `=a"b c"@`, SubTerm{Complete, "ab c"}, "quotes removed from text"},
		{SigilWildcard, "*foo", SubTerm{Incomplete, "foo"}, "wildcard open"},
		{SigilWildcard, "*foo#", SubTerm{Complete, "foo"}, "wildcard closed"},
		{SigilAttr, "@a=b@", SubTerm{Complete, "a"}, "complete wins over a later open sigil"},
		{SigilClass, "", SubTerm{Empty, ""}, "empty input"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.sigil, tc.input))
		})
	}
}

func TestClassifyTail(t *testing.T) {
	assert.Equal(t, SubTerm{Incomplete, "na"}, ClassifyTail("#tenant1@na"))
	assert.Equal(t, SubTerm{Incomplete, ""}, ClassifyTail("#tenant1@"))
	assert.Equal(t, SubTerm{Incomplete, "plain"}, ClassifyTail("plain"))
	assert.Equal(t, SubTerm{Incomplete, "b c"}, ClassifyTail(`="b c"`))
}

func TestClassifyTotal(t *testing.T) {
	inputs := []string{"", "#", "@", "=", "*", "##", "#a", "#a@", "#a@b=c", `"`, `#"a`, "a b", "*x*y*", "=#@*", "héllo#wörld@"}
	for _, in := range inputs {
		for _, sig := range Sigils {
			st := Classify(sig, in)
			assert.Contains(t, States, st.State, "sigil %q input %q", sig, in)
			if st.State == Empty {
				assert.Empty(t, st.String)
			}
		}
	}
}

func TestImplyWildcard(t *testing.T) {
	assert.Equal(t, "*abc", ImplyWildcard("abc"))
	assert.Equal(t, "*", ImplyWildcard(""))
	assert.Equal(t, "#abc", ImplyWildcard("#abc"))
	assert.Equal(t, "=abc", ImplyWildcard("=abc"))
}

func TestNormalizeAlias(t *testing.T) {
	assert.Equal(t, "@name", NormalizeAlias(":name", false))
	assert.Equal(t, "=00:11:22", NormalizeAlias("=00:11:22", false))
	assert.Equal(t, "#fvAp@name=x", NormalizeAlias("#fvAp:name=x", true))
}

func TestTrimTail(t *testing.T) {
	assert.Equal(t, "#tenant1@", TrimTail("#tenant1@pro"))
	assert.Equal(t, "", TrimTail("plain"))
	assert.Equal(t, "=", TrimTail("="))
}
