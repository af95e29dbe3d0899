package relation

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped whenever the snapshot layout changes.
const snapshotVersion = 1

// snapshot is the msgpack layout of a saved relation. Triples are stored as
// 3-element arrays to keep the file compact.
type snapshot struct {
	Version int         `msgpack:"v"`
	Created int64       `msgpack:"ts"`
	Source  string      `msgpack:"src,omitempty"`
	Triples [][3]string `msgpack:"t"`
}

// SaveSnapshot writes rel to path in msgpack.
func SaveSnapshot(rel *Relation, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	snap := snapshot{
		Version: snapshotVersion,
		Created: time.Now().Unix(),
		Source:  rel.Source(),
		Triples: make([][3]string, 0, rel.Len()),
	}
	rel.Each(func(_ int, t Triple) bool {
		snap.Triples = append(snap.Triples, t)
		return true
	})

	w := bufio.NewWriter(file)
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return w.Flush()
}

func readSnapshot(path string) ([]Triple, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := msgpack.NewDecoder(bufio.NewReader(file)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	triples := make([]Triple, len(snap.Triples))
	for i, t := range snap.Triples {
		triples[i] = t
	}
	return triples, nil
}
