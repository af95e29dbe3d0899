package relation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

type tomlTriple struct {
	Class string `toml:"class"`
	Attr  string `toml:"attr"`
	Value string `toml:"value"`
}

type tomlFile struct {
	Triple []tomlTriple `toml:"triple"`
}

func readTOML(path string) ([]Triple, error) {
	var f tomlFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", path, undecoded)
	}

	triples := make([]Triple, 0, len(f.Triple))
	for _, t := range f.Triple {
		triples = append(triples, NewTriple(t.Class, t.Attr, t.Value))
	}
	return triples, nil
}

// readText reads "class<TAB>attr<TAB>value" lines. Blank lines and lines
// starting with '#' are skipped; so are lines with the wrong column count.
func readText(path string) ([]Triple, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var triples []Triple
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 3 {
			log.Warnf("%s:%d: expected 3 columns, got %d", path, lineNo, len(cols))
			continue
		}
		triples = append(triples, NewTriple(cols[0], cols[1], cols[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return triples, nil
}
