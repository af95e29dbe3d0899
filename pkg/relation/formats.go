package relation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnknownFormat is returned when a source path has no supported extension.
var ErrUnknownFormat = errors.New("unknown relation format")

// FileFormat represents the supported relation sources
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatSQLite              // avc table as written by the indexer
	FormatSnapshot            // msgpack snapshot
	FormatTOML                // [[triple]] tables
	FormatText                // tab separated lines
)

// FormatInfo contains metadata about a relation file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatSQLite: {
		Format:      FormatSQLite,
		Description: "SQLite avc table",
		Extensions:  []string{".db", ".sqlite", ".sqlite3"},
		MinSize:     100, // sqlite header
	},
	FormatSnapshot: {
		Format:      FormatSnapshot,
		Description: "Msgpack relation snapshot",
		Extensions:  []string{".msgpack", ".mp"},
		MinSize:     1,
	},
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML triple list",
		Extensions:  []string{".toml"},
		MinSize:     0,
	},
	FormatText: {
		Format:      FormatText,
		Description: "Tab separated triples",
		Extensions:  []string{".tsv", ".txt"},
		MinSize:     0,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat picks the format of path from its extension.
func DetectFormat(path string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ValidateFile checks that path exists and is large enough for format.
func ValidateFile(path string, format FileFormat) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat relation source %s: %w", path, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("relation source %s is a directory", path)
	}
	info, ok := supportedFormats[format]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if fileInfo.Size() < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			path, fileInfo.Size(), info.Description, info.MinSize)
	}
	return nil
}

// Load reads a relation from path, choosing the reader by extension.
func Load(path string) (*Relation, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateFile(path, format); err != nil {
		return nil, err
	}

	var triples []Triple
	switch format {
	case FormatSQLite:
		triples, err = readSQLite(path)
	case FormatSnapshot:
		triples, err = readSnapshot(path)
	case FormatTOML:
		triples, err = readTOML(path)
	case FormatText:
		triples, err = readText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from %s: %w", format, path, err)
	}

	rel := New(triples)
	rel.source = path
	log.Debugf("Loaded relation from %s: %d triples (%d read)", path, rel.Len(), len(triples))
	return rel, nil
}
