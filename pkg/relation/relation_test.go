package relation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/termserve/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Relation {
	return New([]Triple{
		NewTriple("fvTenant", "name", "common"),
		NewTriple("fvTenant", "descr", "shared tenant"),
		NewTriple("fvAp", "name", "web"),
		NewTriple("fvTenant", "name", "common"),
	})
}

func TestNewDeduplicates(t *testing.T) {
	rel := sample()
	require.Equal(t, 3, rel.Len())
	assert.Equal(t, NewTriple("fvTenant", "name", "common"), rel.At(0))
	assert.Equal(t, NewTriple("fvAp", "name", "web"), rel.At(2))
	assert.Equal(t, "shared tenant", rel.At(1).Get(query.Value))
}

func TestDistinct(t *testing.T) {
	rel := sample()
	assert.Equal(t, []string{"fvTenant", "fvAp"}, rel.Distinct(query.Class))
	assert.Equal(t, []string{"name", "descr"}, rel.Distinct(query.Attr))
}

func TestNilRelation(t *testing.T) {
	var rel *Relation
	assert.Equal(t, 0, rel.Len())
	assert.Empty(t, rel.Triples())
	assert.Equal(t, "", rel.Source())
	assert.Equal(t, 0, Empty().Len())
}

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		path     string
		expected FileFormat
	}{
		{"index.db", FormatSQLite},
		{"index.SQLITE", FormatSQLite},
		{"rel.msgpack", FormatSnapshot},
		{"rel.toml", FormatTOML},
		{"rel.tsv", FormatText},
		{"rel.txt", FormatText},
	}
	for _, tc := range testCases {
		got, err := DetectFormat(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.expected, got, tc.path)
	}

	_, err := DetectFormat("rel.csv")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rel.tsv")
	content := "# class\tattr\tvalue\n" +
		"fvTenant\tname\tcommon\n" +
		"\n" +
		"broken line\n" +
		"fvBD\tname\tbd 1\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rel, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Triple{
		NewTriple("fvTenant", "name", "common"),
		NewTriple("fvBD", "name", "bd 1"),
	}, rel.Triples())
	assert.Equal(t, path, rel.Source())
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rel.toml")
	content := `
[[triple]]
class = "fvTenant"
attr = "name"
value = "common"

[[triple]]
class = "fvAp"
attr = "name"
value = "web"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rel, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, rel.Len())
	assert.Equal(t, "fvAp", rel.At(1).Get(query.Class))
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rel.msgpack")
	require.NoError(t, SaveSnapshot(sample(), path))

	rel, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sample().Triples(), rel.Triples())
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchdatabase.db")
	require.NoError(t, WriteSQLite(sample(), path))
	// a second object with the same triple must not duplicate it
	require.NoError(t, WriteSQLite(New([]Triple{NewTriple("fvAp", "name", "web")}), path))

	rel, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sample().Triples(), rel.Triples())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
