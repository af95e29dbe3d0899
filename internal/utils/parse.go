package utils

import (
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Sections is a TOML document decoded table by table. Keys above the first
// table header live under "".
type Sections map[string]map[string]any

var tableHeader = regexp.MustCompile(`^\s*\[([A-Za-z0-9_.-]+)\]\s*(#.*)?$`)

// DecodeTOMLFile strictly decodes path into v. Unknown keys are logged.
func DecodeTOMLFile(path string, v any) error {
	meta, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", path, undecoded)
	}
	return nil
}

// RecoverTOMLFile reads path and decodes whatever tables of it are valid.
// The error is only about reading the file.
func RecoverTOMLFile(path string) (Sections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return RecoverTOML(string(data)), nil
}

// RecoverTOML decodes each table of doc on its own, so a syntax or type
// error drops only the table it occurs in. Headers are found line by line;
// a multi-line string holding a header-like line splits its table.
func RecoverTOML(doc string) Sections {
	sections := make(Sections)
	lines := strings.Split(doc, "\n")
	name, start := "", 0

	flush := func(end int) {
		body := strings.Join(lines[start:end], "\n")
		if name == "" && strings.TrimSpace(body) == "" {
			return
		}
		table := make(map[string]any)
		if _, err := toml.Decode(body, &table); err != nil {
			log.Warnf("Skipping table [%s]: %v", name, err)
			return
		}
		sections[name] = table
	}

	for i, line := range lines {
		m := tableHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		flush(i)
		name, start = m[1], i+1
	}
	flush(len(lines))
	return sections
}

// Int returns table.key when it holds an integer.
func (s Sections) Int(table, key string) (int, bool) {
	v, ok := s[table][key].(int64)
	return int(v), ok
}

// Bool returns table.key when it holds a boolean.
func (s Sections) Bool(table, key string) (bool, bool) {
	v, ok := s[table][key].(bool)
	return v, ok
}

// String returns table.key when it holds a string.
func (s Sections) String(table, key string) (string, bool) {
	v, ok := s[table][key].(string)
	return v, ok
}
